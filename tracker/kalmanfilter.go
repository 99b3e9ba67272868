package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotPredicted is returned when Correct is called without a Predict
	// in the same tick
	ErrNotPredicted = errors.New("correct called before predict")
	// ErrFactorize is returned when the innovation covariance is not
	// positive definite
	ErrFactorize = errors.New("failed to factorize innovation covariance")
	// ErrUnknownModel is returned when parsing an unknown model order name
	ErrUnknownModel = errors.New("unknown motion model")
	// ErrUnknownFallback is returned when parsing an unknown fallback mode
	ErrUnknownFallback = errors.New("unknown fallback mode")
)

// InitialCovariance is the diagonal value of the error covariance after
// the filter is (re)initialized
const InitialCovariance = 0.1

// Phase is the position of the filter within a predict/correct cycle
type Phase int

const (
	// Initialised means no predict has run since the last reinitialize
	Initialised Phase = iota
	// Predicted means the state holds the prior for this tick
	Predicted
	// Corrected means a measurement has been blended into the prior
	Corrected
)

// KalmanFilter is a discrete time linear Kalman filter estimating the
// position of a single point from 2D position measurements
type KalmanFilter struct {
	order ModelOrder
	// processVar and measurementVar are the scalar variances the noise
	// covariances are built from
	processVar     float64
	measurementVar float64
	// state is the mean state vector {x, y, vx, vy[, ax, ay]}
	state *mat.VecDense
	// cov is the error covariance P
	cov *mat.Dense
	// transitionMat is F
	transitionMat *mat.Dense
	// measurementMat is H
	measurementMat *mat.Dense
	// processNoise is Q
	processNoise *mat.Dense
	// measurementNoise is R
	measurementNoise *mat.SymDense
	phase            Phase
}

// NewKalmanFilter initializes and returns a new KalmanFilter for the given
// model order and noise variances
func NewKalmanFilter(order ModelOrder, processVar, measurementVar float64) *KalmanFilter {
	kf := &KalmanFilter{}
	kf.Reinitialize(order, processVar, measurementVar)
	return kf
}

// Reinitialize rebuilds all matrices from scratch, zeroes the state vector
// and sets the error covariance to 0.1*I.  All estimation history is lost
func (kf *KalmanFilter) Reinitialize(order ModelOrder, processVar, measurementVar float64) {

	if order != ConstantVelocity && order != ConstantAcceleration {
		order = ConstantAcceleration
	}

	n := order.StateSize()

	kf.order = order
	kf.processVar = processVar
	kf.measurementVar = measurementVar

	kf.transitionMat = TransitionMatrix(order)
	kf.measurementMat = MeasurementMatrix(order)

	kf.processNoise = mat.NewDense(n, n, nil)
	kf.cov = mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		kf.processNoise.Set(i, i, processVar)
		kf.cov.Set(i, i, InitialCovariance)
	}

	kf.measurementNoise = mat.NewSymDense(2, nil)

	for i := 0; i < 2; i++ {
		kf.measurementNoise.SetSym(i, i, measurementVar)
	}

	kf.state = mat.NewVecDense(n, nil)
	kf.phase = Initialised
}

// Predict advances the state by one time step using the motion model and
// propagates the error covariance.  The result becomes the prior for the
// next Correct
func (kf *KalmanFilter) Predict() Point {

	// x = F*x
	next := mat.NewVecDense(kf.state.Len(), nil)
	next.MulVec(kf.transitionMat, kf.state)
	kf.state = next

	// P = F*P*F' + Q
	var fp mat.Dense
	fp.Mul(kf.transitionMat, kf.cov)

	cov := mat.NewDense(kf.state.Len(), kf.state.Len(), nil)
	cov.Mul(&fp, kf.transitionMat.T())
	cov.Add(cov, kf.processNoise)
	kf.cov = cov

	kf.phase = Predicted

	return kf.Position()
}

// Correct blends the measurement z into the predicted state via the Kalman
// gain and shrinks the error covariance accordingly.  It must follow a
// Predict in the same tick
func (kf *KalmanFilter) Correct(z Point) (Point, error) {

	if kf.phase != Predicted {
		return kf.Position(), ErrNotPredicted
	}

	n := kf.state.Len()

	// project the error covariance into measurement space, HP is 2xN
	hp := mat.NewDense(2, n, nil)
	hp.Mul(kf.measurementMat, kf.cov)

	hph := mat.NewDense(2, 2, nil)
	hph.Mul(hp, kf.measurementMat.T())

	// innovation covariance S = H*P*H' + R, symmetrised against rounding
	innovationCov := mat.NewSymDense(2, nil)

	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			v := 0.5*(hph.At(i, j)+hph.At(j, i)) + kf.measurementNoise.At(i, j)
			innovationCov.SetSym(i, j, v)
		}
	}

	chol := mat.Cholesky{}

	if ok := chol.Factorize(innovationCov); !ok {
		return kf.Position(), ErrFactorize
	}

	// since P is symmetric (P*H')' = H*P, so solving S*K' = H*P yields the
	// transpose of the gain K = P*H'*inv(S)
	var gainT mat.Dense
	err := chol.SolveTo(&gainT, hp)

	if err != nil {
		return kf.Position(), fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	// innovation y = z - H*x
	innovation := mat.NewVecDense(2, []float64{
		z.X - kf.state.AtVec(0),
		z.Y - kf.state.AtVec(1),
	})

	// x = x + K*y
	delta := mat.NewVecDense(n, nil)
	delta.MulVec(gainT.T(), innovation)
	kf.state.AddVec(kf.state, delta)

	// P = P - K*H*P
	khp := mat.NewDense(n, n, nil)
	khp.Mul(gainT.T(), hp)

	cov := mat.NewDense(n, n, nil)
	cov.Sub(kf.cov, khp)
	kf.cov = cov

	kf.phase = Corrected

	return kf.Position(), nil
}

// Position returns the x,y components of the current state
func (kf *KalmanFilter) Position() Point {
	return Point{X: kf.state.AtVec(0), Y: kf.state.AtVec(1)}
}

// Velocity returns the vx,vy components of the current state in pixels
// per tick
func (kf *KalmanFilter) Velocity() Point {
	return Point{X: kf.state.AtVec(2), Y: kf.state.AtVec(3)}
}

// State returns a copy of the state vector
func (kf *KalmanFilter) State() []float64 {
	out := make([]float64, kf.state.Len())

	for i := range out {
		out[i] = kf.state.AtVec(i)
	}

	return out
}

// Covariance returns a copy of the error covariance
func (kf *KalmanFilter) Covariance() *mat.Dense {
	return mat.DenseCopyOf(kf.cov)
}

// CovarianceTrace returns the trace of the error covariance, a scalar
// summary of the filter uncertainty
func (kf *KalmanFilter) CovarianceTrace() float64 {
	return mat.Trace(kf.cov)
}

// Order returns the motion model order
func (kf *KalmanFilter) Order() ModelOrder {
	return kf.order
}

// ProcessVariance returns the process noise variance
func (kf *KalmanFilter) ProcessVariance() float64 {
	return kf.processVar
}

// MeasurementVariance returns the measurement noise variance
func (kf *KalmanFilter) MeasurementVariance() float64 {
	return kf.measurementVar
}

// Phase returns where the filter is within the current tick
func (kf *KalmanFilter) Phase() Phase {
	return kf.phase
}
