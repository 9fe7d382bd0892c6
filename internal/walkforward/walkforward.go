// Package walkforward implements sliding train/test fold evaluation and
// performance-decay aggregation.
package walkforward

import (
	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
)

// Fold is one (train, test) slice pair and the backtest reports over
// each.
type Fold struct {
	Train       []candle.Candle
	Test        []candle.Candle
	TrainReport *backtester.Report
	TestReport  *backtester.Report
}

// Result aggregates every fold's test performance.
type Result struct {
	Folds              []Fold
	MeanTrainSharpe    float64
	MeanTestSharpe     float64
	TestSharpeVariance float64
	PerformanceDecay   float64
}

// Run slides a (trainSize, testSize) window forward by step across
// candles, independently backtesting factory()'s strategy over each
// train and test slice (a fresh instance per slice, so no state leaks
// between them). Stops once the next test slice would be shorter than
// testSize. Requires trainSize >= 2, testSize >= 2, step >= 1, and at
// least one complete window.
func Run(bt *backtester.Backtester, factory strategy.Factory, candles []candle.Candle, trainSize, testSize, step int, initialCash float64) (Result, error) {
	if trainSize < 2 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "train size must be >= 2").WithField("train_size")
	}
	if testSize < 2 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "test size must be >= 2").WithField("test_size")
	}
	if step < 1 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "step must be >= 1").WithField("step")
	}

	var folds []Fold
	for pos := 0; ; pos += step {
		trainEnd := pos + trainSize
		testEnd := trainEnd + testSize
		if testEnd > len(candles) {
			break
		}

		train := candles[pos:trainEnd]
		test := candles[trainEnd:testEnd]

		trainReport, err := bt.Run(train, factory(), initialCash, 0, 0)
		if err != nil {
			return Result{}, err
		}
		testReport, err := bt.Run(test, factory(), initialCash, 0, 0)
		if err != nil {
			return Result{}, err
		}

		folds = append(folds, Fold{
			Train:       train,
			Test:        test,
			TrainReport: trainReport,
			TestReport:  testReport,
		})
	}

	if len(folds) == 0 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "dataset does not contain at least one complete walk-forward window").WithField("candles")
	}

	trainSharpes := make([]float64, len(folds))
	testSharpes := make([]float64, len(folds))
	for i, f := range folds {
		trainSharpes[i] = f.TrainReport.SharpeRatio
		testSharpes[i] = f.TestReport.SharpeRatio
	}

	meanTrain := mean(trainSharpes)
	meanTest := mean(testSharpes)

	testVariance := 0.0
	if len(folds) > 1 {
		testVariance = sampleVariance(testSharpes, meanTest)
	}

	return Result{
		Folds:              folds,
		MeanTrainSharpe:    meanTrain,
		MeanTestSharpe:     meanTest,
		TestSharpeVariance: testVariance,
		PerformanceDecay:   meanTest - meanTrain,
	}, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleVariance(xs []float64, mu float64) float64 {
	if len(xs) <= 1 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mu
		sumSq += d * d
	}
	return sumSq / float64(len(xs)-1)
}
