package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mailaender/vaisalad/internal/wxt"
)

func TestStore_EmptyAtStart(t *testing.T) {
	s := New()

	_, ok := s.Latest()
	require.False(t, ok)

	_, ok = s.LastError()
	require.False(t, ok)
}

func TestStore_SetAndGetLatest(t *testing.T) {
	s := New()
	m := wxt.Measurement{
		Date:          time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		WindDirection: 45,
		WindSpeed:     12.3,
	}
	s.SetLatest(m)

	got, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, m, got)
}

func TestStore_ClearLatestKeepsError(t *testing.T) {
	s := New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetLatest(wxt.Measurement{WindSpeed: 1.0})
	s.SetError(at, "device unplugged")

	s.ClearLatest()

	_, ok := s.Latest()
	require.False(t, ok)

	rec, ok := s.LastError()
	require.True(t, ok)
	require.Equal(t, at, rec.Time)
	require.Equal(t, "device unplugged", rec.Message)
}

func TestStore_SetErrorOverwrites(t *testing.T) {
	s := New()
	s.SetError(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "first")
	second := time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)
	s.SetError(second, "second")

	rec, ok := s.LastError()
	require.True(t, ok)
	require.Equal(t, second, rec.Time)
	require.Equal(t, "second", rec.Message)
}

func TestStore_ErrorDoesNotTouchLatest(t *testing.T) {
	s := New()
	s.SetLatest(wxt.Measurement{Temperature: 20.5})
	s.SetError(time.Now().UTC(), "read failed")

	got, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, 20.5, got.Temperature)
}

// Snapshots must never mix fields from two different writes. The writer
// installs measurements whose fields all carry the same value; readers
// assert that property on every snapshot they take. Run with -race.
func TestStore_ConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := New()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float64(i % 360)
			s.SetLatest(wxt.Measurement{
				WindDirection:     v,
				WindSpeed:         v,
				Temperature:       v,
				RelativeHumidity:  v,
				Pressure:          v,
				AccumulatedRain:   v,
				HeaterTemperature: v,
				HeaterVoltage:     v,
			})
			if i%100 == 0 {
				s.SetError(time.Now().UTC(), "synthetic fault")
			}
		}
	}()

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5000; j++ {
				m, ok := s.Latest()
				if !ok {
					continue
				}
				v := m.WindDirection
				if m.WindSpeed != v || m.Temperature != v || m.RelativeHumidity != v ||
					m.Pressure != v || m.AccumulatedRain != v ||
					m.HeaterTemperature != v || m.HeaterVoltage != v {
					t.Errorf("torn snapshot: %+v", m)
					return
				}
				s.LastError()
			}
		}()
	}

	// Readers finish first, then stop the writer.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for goroutines")
	}
}
