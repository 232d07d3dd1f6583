package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultQuality, cfg.Quality())
	require.Equal(t, DefaultTargetReduction, cfg.TargetReduction())
	require.False(t, cfg.Lossless())
	require.False(t, cfg.PreserveMetadata())
}

func TestNewConfig_Options(t *testing.T) {
	cfg, err := NewConfig(
		WithQuality(20),
		WithTargetReduction(60),
		WithLossless(true),
		WithPreserveMetadata(true),
	)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.Quality())
	require.Equal(t, 60, cfg.TargetReduction())
	require.True(t, cfg.Lossless())
	require.True(t, cfg.PreserveMetadata())
}

func TestNewConfig_QualityRange(t *testing.T) {
	// Boundary values are valid.
	for _, q := range []int{MinQuality, 50, MaxQuality} {
		_, err := NewConfig(WithQuality(q))
		require.NoError(t, err, "quality %d", q)
	}

	for _, q := range []int{9, 101, 0, -1, 1000} {
		_, err := NewConfig(WithQuality(q))
		require.Error(t, err, "quality %d", q)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "quality", verr.Field)
		require.Equal(t, q, verr.Value)
		require.Equal(t, MinQuality, verr.Min)
		require.Equal(t, MaxQuality, verr.Max)
	}
}

func TestNewConfig_TargetReductionRange(t *testing.T) {
	for _, r := range []int{MinTargetReduction, 50, MaxTargetReduction} {
		_, err := NewConfig(WithTargetReduction(r))
		require.NoError(t, err, "reduction %d", r)
	}

	for _, r := range []int{9, 81, 0, -10} {
		_, err := NewConfig(WithTargetReduction(r))
		require.Error(t, err, "reduction %d", r)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "targetReduction", verr.Field)
	}
}

func TestNewConfig_LosslessDoesNotRelaxValidation(t *testing.T) {
	// Ranges apply regardless of the lossless flag, and quality is carried
	// through unchanged.
	_, err := NewConfig(WithQuality(9), WithLossless(true))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	cfg, err := NewConfig(WithQuality(20), WithLossless(true))
	require.NoError(t, err)
	require.Equal(t, 20, cfg.Quality())
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "quality", Value: 101, Min: 10, Max: 100}
	require.Equal(t, "invalid quality: 101 out of range [10, 100]", err.Error())
}
