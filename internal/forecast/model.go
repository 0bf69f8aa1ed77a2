package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	yearlyPeriod = 365.25
	weeklyPeriod = 7.0

	// prior scale of the base growth rate and offset
	trendPriorScale = 5.0
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// model is an additive trend + yearly + weekly regression fitted by MAP with
// Gaussian priors on every coefficient.
type model struct {
	start  time.Time
	span   float64 // history length in days
	yScale float64

	changepoints []float64 // scaled time of each trend changepoint
	yearlyOrder  int
	weeklyOrder  int

	// coefficients, in scaled units
	k      float64
	m      float64
	delta  []float64
	yearly []float64
	weekly []float64

	sigma float64 // residual std dev in data units
	rate  float64 // trend changes per unit of scaled time
	tau   float64 // mean absolute trend change
	z     float64
}

// components is one prediction split into its additive parts, in data units.
type components struct {
	trend  float64
	yearly float64
	weekly float64
}

func (c components) yhat() float64 {
	return c.trend + c.yearly + c.weekly
}

func days(t time.Time) float64 {
	return t.Sub(epoch).Hours() / 24
}

// fourier appends the order-n fourier terms of t (days since epoch).
func fourier(dst []float64, t, period float64, n int) []float64 {
	for i := 1; i <= n; i++ {
		x := 2 * math.Pi * float64(i) * t / period
		dst = append(dst, math.Cos(x), math.Sin(x))
	}
	return dst
}

// changepointTimes places n changepoints at evenly spaced rows of the first
// rng share of the history, skipping the first row.
func changepointTimes(ts []float64, n int, rng float64) []float64 {
	hist := int(math.Floor(float64(len(ts)) * rng))
	if n > hist-1 {
		n = hist - 1
	}
	if n <= 0 {
		return nil
	}
	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(hist-1) / float64(n)))
		out = append(out, ts[idx])
	}
	return out
}

func (md *model) scaledTime(t time.Time) float64 {
	return t.Sub(md.start).Hours() / 24 / md.span
}

// row builds the design row of date d.
func (md *model) row(dst []float64, d time.Time) []float64 {
	t := md.scaledTime(d)
	dst = append(dst[:0], 1, t)
	for _, s := range md.changepoints {
		dst = append(dst, math.Max(t-s, 0))
	}
	td := days(d)
	dst = fourier(dst, td, yearlyPeriod, md.yearlyOrder)
	dst = fourier(dst, td, weeklyPeriod, md.weeklyOrder)
	return dst
}

func (md *model) width() int {
	return 2 + len(md.changepoints) + 2*md.yearlyOrder + 2*md.weeklyOrder
}

// fit estimates the model on a gap-free daily series.
func fit(dates []time.Time, ys []float64, c *Config) (*model, error) {
	n := len(ys)
	if n < 2 || len(dates) != n {
		return nil, fmt.Errorf("need at least 2 observations, got %d", n)
	}

	md := &model{
		start:       dates[0],
		span:        dates[n-1].Sub(dates[0]).Hours() / 24,
		yearlyOrder: c.YearlyOrder,
		weeklyOrder: c.WeeklyOrder,
	}
	if md.span <= 0 {
		return nil, fmt.Errorf("history has no time span")
	}
	for _, y := range ys {
		md.yScale = math.Max(md.yScale, math.Abs(y))
	}
	if md.yScale == 0 {
		md.yScale = 1
	}

	ts := make([]float64, n)
	for i, d := range dates {
		ts[i] = md.scaledTime(d)
	}
	md.changepoints = changepointTimes(ts, c.Changepoints, c.ChangepointRange)

	p := md.width()
	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	buf := make([]float64, 0, p)
	for i, d := range dates {
		buf = md.row(buf, d)
		x.SetRow(i, buf)
		y.SetVec(i, ys[i]/md.yScale)
	}

	priors := make([]float64, p)
	priors[0], priors[1] = trendPriorScale, trendPriorScale
	for j := 2; j < p; j++ {
		priors[j] = c.SeasonalityPriorScale
		if j < 2+len(md.changepoints) {
			priors[j] = c.ChangepointPriorScale
		}
	}

	// first pass with unit noise, second with the residual variance of the first
	theta, err := solveMAP(x, y, priors, 1)
	if err != nil {
		return nil, err
	}
	s2 := residualVariance(x, y, theta)
	if s2 <= 0 {
		s2 = 1e-12
	}
	theta, err = solveMAP(x, y, priors, s2)
	if err != nil {
		return nil, err
	}

	md.k, md.m = theta.AtVec(1), theta.AtVec(0)
	j := 2
	md.delta = make([]float64, len(md.changepoints))
	for i := range md.delta {
		md.delta[i] = theta.AtVec(j)
		j++
	}
	md.yearly = make([]float64, 2*md.yearlyOrder)
	for i := range md.yearly {
		md.yearly[i] = theta.AtVec(j)
		j++
	}
	md.weekly = make([]float64, 2*md.weeklyOrder)
	for i := range md.weekly {
		md.weekly[i] = theta.AtVec(j)
		j++
	}

	md.sigma = math.Sqrt(residualVariance(x, y, theta)) * md.yScale
	if len(md.delta) > 0 {
		for _, d := range md.delta {
			md.tau += math.Abs(d)
		}
		md.tau /= float64(len(md.delta))
		md.rate = float64(len(md.delta))
	}
	md.z = distuv.UnitNormal.Quantile(0.5 + c.IntervalWidth/2)

	if math.IsNaN(md.sigma) || math.IsNaN(md.k) || math.IsNaN(md.m) {
		return nil, errors.New("model fit did not converge")
	}
	return md, nil
}

// solveMAP solves (XᵀX/s2 + diag(1/prior²)) θ = Xᵀy/s2.
func solveMAP(x *mat.Dense, y *mat.VecDense, priors []float64, s2 float64) (*mat.VecDense, error) {
	_, p := x.Dims()

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	a := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := xtx.At(i, j) / s2
			if i == j {
				v += 1 / (priors[i] * priors[i])
			}
			a.SetSym(i, j, v)
		}
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)
	xty.ScaleVec(1/s2, &xty)

	theta := mat.NewVecDense(p, nil)
	var chol mat.Cholesky
	if chol.Factorize(a) {
		if err := chol.SolveVecTo(theta, &xty); err == nil {
			return theta, nil
		}
	}
	if err := theta.SolveVec(a, &xty); err != nil {
		return nil, fmt.Errorf("can't solve normal equations: %w", err)
	}
	return theta, nil
}

func residualVariance(x *mat.Dense, y, theta *mat.VecDense) float64 {
	var fitted mat.VecDense
	fitted.MulVec(x, theta)
	n := y.Len()
	var ss float64
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		ss += r * r
	}
	return ss / float64(n)
}

// predict returns the components of date d.
func (md *model) predict(d time.Time) components {
	t := md.scaledTime(d)
	trend := md.k*t + md.m
	for i, s := range md.changepoints {
		if t > s {
			trend += md.delta[i] * (t - s)
		}
	}
	td := days(d)
	return components{
		trend:  trend * md.yScale,
		yearly: dot(md.yearly, fourier(nil, td, yearlyPeriod, md.yearlyOrder)) * md.yScale,
		weekly: dot(md.weekly, fourier(nil, td, weeklyPeriod, md.weeklyOrder)) * md.yScale,
	}
}

// halfWidth returns the half width of the uncertainty band at date d. Beyond
// the history the band widens with the variance of future trend changes,
// modelled as a Poisson stream of Laplace distributed rate changes.
func (md *model) halfWidth(d time.Time) float64 {
	v := md.sigma * md.sigma
	if h := md.scaledTime(d) - 1; h > 0 && md.rate > 0 {
		tv := md.rate * 2 * md.tau * md.tau * h * h * h / 3
		v += tv * md.yScale * md.yScale
	}
	return md.z * math.Sqrt(v)
}

// yearlyAt evaluates the yearly component for day of year doy of a leap year.
func (md *model) yearlyAt(doy int) float64 {
	d := time.Date(2020, 1, doy, 0, 0, 0, 0, time.UTC)
	return dot(md.yearly, fourier(nil, days(d), yearlyPeriod, md.yearlyOrder)) * md.yScale
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
