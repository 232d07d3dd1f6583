package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pixo/codec"
	"github.com/arloliu/pixo/format"
	"github.com/arloliu/pixo/metrics"
)

// scriptedProvider lets each test control capability behavior precisely.
type scriptedProvider struct {
	optimizers map[format.Format]codec.OptimizeFunc
	converters map[format.Format]codec.ConvertFunc
	peakMB     float64
}

func (s *scriptedProvider) Optimizers() map[format.Format]codec.OptimizeFunc { return s.optimizers }
func (s *scriptedProvider) Converters() map[format.Format]codec.ConvertFunc { return s.converters }
func (s *scriptedProvider) PeakMemoryMB() float64                           { return s.peakMB }

func newTestInvoker(t *testing.T, p codec.Provider, opts ...InvokerOption) *Invoker {
	t.Helper()

	iv, err := NewInvoker(codec.NewRegistry(p), opts...)
	require.NoError(t, err)

	return iv
}

func optimizeTarget(f format.Format) Target {
	target, _ := Route(f, format.OpOptimize, format.Unknown)
	return target
}

func TestInvoke_EmptyInputNeverTouchesCodec(t *testing.T) {
	called := false
	p := &scriptedProvider{
		optimizers: map[format.Format]codec.OptimizeFunc{
			format.PNG: func(data []byte, _ codec.Config) ([]byte, error) {
				called = true
				return data, nil
			},
		},
	}
	iv := newTestInvoker(t, p)

	_, err := iv.Invoke(optimizeTarget(format.PNG), nil, codec.DefaultConfig())

	var ierr *InvalidInputError
	require.ErrorAs(t, err, &ierr)
	require.False(t, called, "guard failures must not reach the capability")
}

func TestInvoke_ResourceLimit(t *testing.T) {
	p := &scriptedProvider{
		optimizers: map[format.Format]codec.OptimizeFunc{
			format.PNG: func(data []byte, _ codec.Config) ([]byte, error) { return data, nil },
		},
	}
	iv := newTestInvoker(t, p, WithMaxInputBytes(8))

	_, err := iv.Invoke(optimizeTarget(format.PNG), make([]byte, 9), codec.DefaultConfig())

	var rerr *ResourceLimitError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, 8, rerr.Limit)
	require.Equal(t, 9, rerr.Size)

	// At the limit exactly is fine.
	_, err = iv.Invoke(optimizeTarget(format.PNG), make([]byte, 8), codec.DefaultConfig())
	require.NoError(t, err)
}

func TestInvoke_AbsentCapability(t *testing.T) {
	iv := newTestInvoker(t, &scriptedProvider{})

	_, err := iv.Invoke(optimizeTarget(format.PNG), []byte{1}, codec.DefaultConfig())

	var uerr *UnsupportedFormatError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, format.PNG, uerr.Format)

	// For conversions, the missing entry point is the target format.
	target, err := Route(format.PNG, format.OpConvert, format.WebP)
	require.NoError(t, err)
	_, err = iv.Invoke(target, []byte{1}, codec.DefaultConfig())
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, format.WebP, uerr.Format)
	require.Equal(t, format.OpConvert, uerr.Op)
}

func TestInvoke_SuccessComputesSavings(t *testing.T) {
	p := &scriptedProvider{
		optimizers: map[format.Format]codec.OptimizeFunc{
			format.PNG: func(data []byte, _ codec.Config) ([]byte, error) {
				return data[:len(data)/2], nil
			},
		},
		peakMB: 7.5,
	}
	iv := newTestInvoker(t, p)

	res, err := iv.Invoke(optimizeTarget(format.PNG), make([]byte, 100), codec.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 100, res.OriginalSize)
	require.Equal(t, 50, res.OptimizedSize)
	require.InDelta(t, 50.0, res.SavingsPercent, 1e-9)
	require.GreaterOrEqual(t, res.TimingMs, 0.0)
	require.InDelta(t, 7.5, res.MemoryPeakMB, 1e-9)
}

func TestInvoke_GrowthIsStillSuccess(t *testing.T) {
	p := &scriptedProvider{
		optimizers: map[format.Format]codec.OptimizeFunc{
			format.PNG: func(data []byte, _ codec.Config) ([]byte, error) {
				return append(append([]byte(nil), data...), 0xFF), nil
			},
		},
	}
	iv := newTestInvoker(t, p)

	res, err := iv.Invoke(optimizeTarget(format.PNG), make([]byte, 10), codec.DefaultConfig())
	require.NoError(t, err, "output >= input is a valid outcome")
	require.Negative(t, res.SavingsPercent)
}

func TestInvoke_NormalizesFailures(t *testing.T) {
	boom := errors.New("decoder exploded")
	p := &scriptedProvider{
		optimizers: map[format.Format]codec.OptimizeFunc{
			format.PNG:  func([]byte, codec.Config) ([]byte, error) { return nil, boom },
			format.JPEG: func([]byte, codec.Config) ([]byte, error) { panic("segfault-ish") },
			format.GIF:  func([]byte, codec.Config) ([]byte, error) { return nil, nil },
		},
	}
	iv := newTestInvoker(t, p)
	cfg, err := codec.NewConfig(codec.WithQuality(20))
	require.NoError(t, err)

	t.Run("returned error", func(t *testing.T) {
		res, err := iv.Invoke(optimizeTarget(format.PNG), []byte{1, 2, 3}, cfg)

		var cerr *CodecError
		require.ErrorAs(t, err, &cerr)
		require.ErrorIs(t, err, boom)
		require.Equal(t, "optimize_png", cerr.Diag.EntryPoint)
		require.Equal(t, 3, cerr.Diag.Size)
		require.Equal(t, 20, cerr.Diag.Quality)
		require.NotZero(t, cerr.Diag.ContentID)
		require.Nil(t, res.Output)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		_, err := iv.Invoke(optimizeTarget(format.JPEG), []byte{1}, cfg)

		var cerr *CodecError
		require.ErrorAs(t, err, &cerr)
		require.Contains(t, cerr.Error(), "panicked")
	})

	t.Run("empty output with declared success", func(t *testing.T) {
		_, err := iv.Invoke(optimizeTarget(format.GIF), []byte{1}, cfg)

		var cerr *CodecError
		require.ErrorAs(t, err, &cerr)
		require.Contains(t, cerr.Error(), "empty output")
	})
}

func TestInvoke_MetricsRecording(t *testing.T) {
	p := &scriptedProvider{
		optimizers: map[format.Format]codec.OptimizeFunc{
			format.PNG: func(data []byte, _ codec.Config) ([]byte, error) { return data, nil },
			format.OBJ: func(data []byte, _ codec.Config) ([]byte, error) { return data, nil },
			format.GIF: func([]byte, codec.Config) ([]byte, error) { return nil, errors.New("nope") },
		},
	}
	agg := metrics.NewAggregator()
	iv := newTestInvoker(t, p, WithAggregator(agg))

	_, err := iv.Invoke(optimizeTarget(format.PNG), []byte{1}, codec.DefaultConfig())
	require.NoError(t, err)
	_, err = iv.Invoke(optimizeTarget(format.OBJ), []byte{1}, codec.DefaultConfig())
	require.NoError(t, err)
	_, err = iv.Invoke(optimizeTarget(format.GIF), []byte{1}, codec.DefaultConfig())
	require.Error(t, err)

	snap := agg.Snapshot()
	require.Equal(t, uint64(1), snap.ImagesProcessed)
	require.Equal(t, uint64(1), snap.MeshesProcessed)
	require.Equal(t, uint64(1), snap.Failed)
}

func TestNewInvoker_InvalidOption(t *testing.T) {
	_, err := NewInvoker(codec.NewRegistry(nil), WithMaxInputBytes(0))
	require.Error(t, err)
}
