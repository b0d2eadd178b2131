package mathutil_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/crowd-sfm/internal/mathutil"
)

func TestSinCosMatchMathWithinTolerance(t *testing.T) {
	for theta := -10.0; theta < 10.0; theta += 0.37 {
		require.InDelta(t, math.Sin(theta), mathutil.Sin(theta), 5e-4)
		require.InDelta(t, math.Cos(theta), mathutil.Cos(theta), 5e-4)
	}
}

func TestAtan2MatchesMathWithinTolerance(t *testing.T) {
	cases := [][2]float64{
		{1, 1}, {-1, 1}, {-1, -1}, {1, -1}, {0, 1}, {1, 0}, {0, -1}, {-1, 0},
	}
	for _, c := range cases {
		y, x := c[0], c[1]
		require.InDelta(t, math.Atan2(y, x), mathutil.Atan2(y, x), 2e-5)
	}
}

func TestClippedGaussianStaysWithinBound(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := mathutil.ClippedGaussian(rng, 1.3, 0.2, 3)
		require.InDelta(t, 1.3, v, 3*0.2+1e-9)
	}
}

func TestClippedGaussianZeroStdReturnsMean(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	require.Equal(t, 1.3, mathutil.ClippedGaussian(rng, 1.3, 0, 3))
}

func TestNormalCDFIsMonotonic(t *testing.T) {
	require.Less(t, mathutil.NormalCDF(-1), mathutil.NormalCDF(0))
	require.Less(t, mathutil.NormalCDF(0), mathutil.NormalCDF(1))
	require.InDelta(t, 0.5, mathutil.NormalCDF(0), 1e-9)
}
