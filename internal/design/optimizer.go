package design

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"

	"github.com/voltlab/boostgen/internal/catalog"
	"github.com/voltlab/boostgen/internal/errors"
	"github.com/voltlab/boostgen/internal/logging"
	"github.com/voltlab/boostgen/internal/opmap"
	"github.com/voltlab/boostgen/internal/sizing"
)

// penaltyLoss substitutes for an infeasible candidate so the simplex can
// retreat instead of the search dying. Large but finite: Nelder-Mead
// cannot order points against Inf.
const penaltyLoss = 1e9

// Decision variable bounds. The inductor ripple ratio must stay below 0.5
// or the valley current goes negative; the switch budget is searched around
// the efficiency-derived budget.
const (
	rippleRatioMin = 0.005
	rippleRatioMax = 0.49
	budgetScaleMin = 0.25
	budgetScaleMax = 4.0
)

// Recorder receives optimizer progress events. The monitor's metrics
// exporter implements it.
type Recorder interface {
	Iteration(penalty bool)
	BestLoss(loss float64)
}

type nopRecorder struct{}

func (nopRecorder) Iteration(bool)   {}
func (nopRecorder) BestLoss(float64) {}

// Store persists the design state after every iteration.
type Store interface {
	Save(state *DesignState) error
}

type nopStore struct{}

func (nopStore) Save(*DesignState) error { return nil }

// Options tune the outer search.
type Options struct {
	// MaxIterations bounds the Nelder-Mead function evaluations; zero
	// means evaluate nothing and return the initial state.
	MaxIterations int
	// MaxFrequency caps the selected switching frequency (Hz).
	MaxFrequency float64

	Store    Store
	Recorder Recorder
	Logger   *logging.Logger
}

// IterationResult is one objective evaluation: either a feasible design
// with its predicted loss, or a penalty naming the violated requirement.
type IterationResult struct {
	Loss    float64 `json:"loss_w"`
	Penalty bool    `json:"penalty"`
	Reason  string  `json:"reason,omitempty"`
}

// Optimizer searches the two outer decision variables, inductor ripple
// ratio and switch power budget, for the catalog selection with the lowest
// predicted total loss.
type Optimizer struct {
	spec     Spec
	catalogs *catalog.Catalogs
	opts     Options
	log      *zap.Logger

	// mu guards state against concurrent monitor reads.
	mu    sync.RWMutex
	m     *opmap.Map
	state *DesignState
}

// New builds an optimizer for the spec against the loaded catalogs.
func New(spec Spec, catalogs *catalog.Catalogs, opts Options) (*Optimizer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if catalogs == nil {
		return nil, errors.Domainf("catalogs are required").
			WithComponent("design").WithOperation("New")
	}
	if opts.Store == nil {
		opts.Store = nopStore{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.New(logging.ErrorLevel, io.Discard)
	}
	if opts.MaxFrequency <= 0 {
		opts.MaxFrequency = 1e6
	}

	return &Optimizer{
		spec:     spec,
		catalogs: catalogs,
		opts:     opts,
		log:      logging.NewZapLogger(opts.Logger.WithField("component", "design")),
	}, nil
}

// State returns a copy of the current design state, or nil before
// initialization.
func (o *Optimizer) State() *DesignState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.state == nil {
		return nil
	}
	return o.state.Clone()
}

// initialize samples both port models, builds the unconstrained operating
// map, and derives the ripple ratios from the absolute targets and the map
// extremes.
func (o *Optimizer) initialize() error {
	source, err := buildPort(o.spec.Source)
	if err != nil {
		return err
	}
	sink, err := buildPort(o.spec.Sink)
	if err != nil {
		return err
	}

	srcV, srcI, err := source.Sample()
	if err != nil {
		return errors.Wrap(err, "sampling source model").
			WithComponent("design").WithOperation("initialize")
	}
	sinkV, sinkI, err := sink.Sample()
	if err != nil {
		return errors.Wrap(err, "sampling sink model").
			WithComponent("design").WithOperation("initialize")
	}

	m, err := opmap.Build(srcV, srcI, sinkV, sinkI)
	if err != nil {
		return err
	}

	b := m.Bounds()
	state := &DesignState{
		Phase:     PhaseInitializing,
		UpdatedAt: time.Now().UTC(),
		Spec:      o.spec,
		Bounds:    b,
		Points:    m.Points(),
		Ripple: RippleBudget{
			InputVolts:    o.spec.InputRippleVolts,
			InputRatio:    o.spec.InputRippleVolts / b.VI.Max / 2,
			OutputVolts:   o.spec.OutputRippleVolts,
			OutputRatio:   o.spec.OutputRippleVolts / b.VO.Max / 2,
			InductorAmps:  o.spec.InductorRippleAmps,
			InductorRatio: o.spec.InductorRippleAmps / b.II.Max / 2,
		},
	}

	o.mu.Lock()
	o.m = m
	o.state = state
	o.mu.Unlock()

	o.log.Info("design initialized",
		zap.Int("operating_points", m.Len()),
		zap.Float64("vi_max", b.VI.Max),
		zap.Float64("vo_max", b.VO.Max),
		zap.Float64("p_max", b.P.Max))
	return nil
}

// Iterate runs one full selection pass at the given decision variables and
// reports the outcome. Recoverable selection failures become penalties;
// anything else, including cancellation, is returned as an error.
func (o *Optimizer) Iterate(ctx context.Context, rippleRatio, powerBudget float64) (IterationResult, error) {
	if err := ctx.Err(); err != nil {
		return IterationResult{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.state
	st.Iteration++
	st.Phase = PhaseIterating
	st.Ripple.InductorRatio = rippleRatio
	st.PowerBudget = powerBudget

	res, err := o.evaluate(rippleRatio, powerBudget)
	if err != nil {
		if !errors.IsRecoverable(err) {
			return IterationResult{}, err
		}
		res = IterationResult{Loss: penaltyLoss, Penalty: true, Reason: err.Error()}
		st.Penalties++
		st.LastFailure = res.Reason
		o.log.Debug("iteration penalized",
			zap.Int("iteration", st.Iteration),
			zap.String("reason", res.Reason))
	} else {
		st.Loss.Total = res.Loss
		if st.BestLoss == 0 || res.Loss < st.BestLoss {
			st.BestLoss = res.Loss
			o.opts.Recorder.BestLoss(res.Loss)
		}
		o.log.Info("iteration complete",
			zap.Int("iteration", st.Iteration),
			zap.Float64("ripple_ratio", rippleRatio),
			zap.Float64("power_budget", powerBudget),
			zap.Float64("loss_total_w", res.Loss),
			zap.Float64("best_loss_w", st.BestLoss))
	}

	st.UpdatedAt = time.Now().UTC()
	o.opts.Recorder.Iteration(res.Penalty)
	if err := o.opts.Store.Save(st); err != nil {
		o.log.Warn("failed to persist design state", zap.Error(err))
	}
	return res, nil
}

// evaluate runs the selection pipeline and fills the component fields of
// the state on success.
func (o *Optimizer) evaluate(rippleRatio, powerBudget float64) (IterationResult, error) {
	st := o.state

	m := o.m.Constrain(o.spec.DutyMin, o.spec.DutyMax, o.spec.MinPower)
	if m.Len() == 0 {
		return IterationResult{}, errors.Infeasiblef(
			"no operating point within duty [%0.2f, %0.2f] above %0.1f W",
			o.spec.DutyMin, o.spec.DutyMax, o.spec.MinPower).
			WithComponent("design").WithOperation("evaluate")
	}
	b := m.Bounds()
	worst, _ := m.WorstStress()
	best, _ := m.BestStress()

	req := sizing.SwitchRequirements(b.VO.Max, b.II.Max, b.P.Max, o.spec.SafetyFactor, o.spec.SwitchLossShare)
	req.PowerBudget = powerBudget

	sw, err := sizing.SelectSwitch(o.catalogs.Switches, req, worst, best,
		rippleRatio, o.opts.MaxFrequency, o.spec.AmbientTemperature)
	if err != nil {
		return IterationResult{}, err
	}

	rLA := rippleRatio * 2 * b.II.Max
	passives, err := sizing.PassiveRequirements(m.Points(), sw.Frequency,
		o.spec.InputRippleVolts, o.spec.OutputRippleVolts, rLA, o.spec.Efficiency, o.spec.SafetyFactor)
	if err != nil {
		return IterationResult{}, err
	}

	inBank, err := sizing.SelectCapacitorBank(o.catalogs.Capacitors,
		passives.CIVRated, passives.CIMin, passives.CIRMSMin)
	if err != nil {
		return IterationResult{}, err
	}
	outBank, err := sizing.SelectCapacitorBank(o.catalogs.Capacitors,
		passives.COVRated, passives.COMin, passives.CORMSMin)
	if err != nil {
		return IterationResult{}, err
	}

	inductor, err := sizing.SelectInductor(o.catalogs.Inductors, *o.catalogs,
		passives, sw.Frequency, rippleRatio, o.spec.AmbientTemperature)
	if err != nil {
		return IterationResult{}, err
	}

	st.Switch = &sw
	st.Passives = &passives
	st.InputBank = &inBank
	st.OutputBank = &outBank
	st.Inductor = &inductor
	st.Loss = LossSummary{
		Switches:   2 * sw.WorstCase.Total,
		InputBank:  inBank.Loss,
		OutputBank: outBank.Loss,
		Inductor:   inductor.TotalLoss,
	}
	st.Loss.Total = st.Loss.Switches + st.Loss.InputBank + st.Loss.OutputBank + st.Loss.Inductor

	return IterationResult{Loss: st.Loss.Total}, nil
}

// Run executes the full design search and returns the final state. The
// context cancels the search between iterations.
func (o *Optimizer) Run(ctx context.Context) (*DesignState, error) {
	if err := o.initialize(); err != nil {
		return nil, err
	}
	if o.opts.MaxIterations == 0 {
		return o.State(), nil
	}

	b := o.state.Bounds
	budget0 := b.P.Max * o.spec.SwitchLossShare
	x0 := []float64{o.state.Ripple.InductorRatio, budget0}
	lo := []float64{rippleRatioMin, budget0 * budgetScaleMin}
	hi := []float64{rippleRatioMax, budget0 * budgetScaleMax}
	for i := range x0 {
		x0[i] = math.Max(lo[i], math.Min(x0[i], hi[i]))
	}

	var (
		evals     int
		successes int
		iterErr   error
		canceled  bool
	)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if canceled || iterErr != nil {
				return penaltyLoss
			}
			for i := range x {
				x[i] = math.Max(lo[i], math.Min(x[i], hi[i]))
			}
			evals++
			res, err := o.Iterate(ctx, x[0], x[1])
			if err != nil {
				if ctx.Err() != nil {
					canceled = true
				} else {
					iterErr = err
				}
				return penaltyLoss
			}
			if !res.Penalty {
				successes++
			}
			return res.Loss
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: o.opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Relative:   1e-6,
			Iterations: 20,
		},
	}
	method := &optimize.NelderMead{SimplexSize: 0.1}

	result, err := optimize.Minimize(problem, x0, settings, method)
	if canceled {
		o.setPhase(PhaseFailed, false)
		return nil, ctx.Err()
	}
	if iterErr != nil {
		o.setPhase(PhaseFailed, false)
		return nil, iterErr
	}
	if err != nil && result == nil {
		o.setPhase(PhaseFailed, false)
		return nil, errors.Wrap(err, "outer optimization failed").
			WithComponent("design").WithOperation("Run")
	}

	if successes == 0 {
		o.setPhase(PhaseFailed, true)
		return nil, errors.Wrapf(ErrNoFeasibleDesign, "%s", o.State().LastFailure).
			WithKind(errors.KindInfeasible).
			WithComponent("design").WithOperation("Run")
	}

	// Re-run the pipeline at the best point so the persisted component
	// selection matches the reported loss.
	final, err := o.Iterate(ctx, result.X[0], result.X[1])
	if err != nil {
		return nil, err
	}
	if final.Penalty {
		// The simplex can end on a penalized vertex; the best feasible
		// evaluation is already persisted.
		o.log.Warn("final vertex infeasible, keeping best persisted state",
			zap.String("reason", final.Reason))
	}

	o.setPhase(PhaseConverged, true)

	done := o.State()
	o.log.Info("design converged",
		zap.Int("iterations", done.Iteration),
		zap.Int("penalties", done.Penalties),
		zap.Float64("best_loss_w", done.BestLoss),
		zap.Float64("ripple_ratio", result.X[0]),
		zap.Float64("power_budget", result.X[1]))
	return done, nil
}

// setPhase records a terminal phase, optionally persisting it. Called only
// after the inner search has stopped, so saving outside the lock is safe.
func (o *Optimizer) setPhase(phase Phase, persist bool) {
	o.mu.Lock()
	o.state.Phase = phase
	o.state.UpdatedAt = time.Now().UTC()
	st := o.state
	o.mu.Unlock()

	if persist {
		if err := o.opts.Store.Save(st); err != nil {
			o.log.Warn("failed to persist design state", zap.Error(err))
		}
	}
}
