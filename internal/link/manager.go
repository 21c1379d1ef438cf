// Package link maintains the serial connection to the weather station and
// keeps the measurement store current.
package link

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Mailaender/vaisalad/internal/config"
	"github.com/Mailaender/vaisalad/internal/serial"
	"github.com/Mailaender/vaisalad/internal/store"
	"github.com/Mailaender/vaisalad/internal/wxt"
)

const delimiter = "\r\n"

// Publisher forwards decoded measurements to an external sink. A failed
// publish is logged and dropped; it never disturbs acquisition.
type Publisher interface {
	PublishMeasurement(m wxt.Measurement) error
}

// Manager owns the serial device for the lifetime of the process. It opens
// the port, reads and decodes sentences, and retries indefinitely with a
// fixed backoff after any fault. Every connection and session fault is
// recorded in the store; malformed lines are dropped silently because the
// link itself is healthy.
type Manager struct {
	cfg   config.Config
	store *store.Store
	pub   Publisher // may be nil

	// open is serial.Open, replaceable in tests.
	open func(serial.Config) (*serial.Port, error)
}

func NewManager(cfg config.Config, st *store.Store, pub Publisher) *Manager {
	return &Manager{cfg: cfg, store: st, pub: pub, open: serial.Open}
}

// Run loops between sessions until ctx is cancelled. It never returns an
// error: faults are converted into the store's error record and retried.
func (m *Manager) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m.session(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.cfg.ReconnectBackoff):
		}
	}
}

// session runs one open-to-close cycle. It returns after a fault (recorded
// in the store) or when ctx is cancelled.
func (m *Manager) session(ctx context.Context) {
	port, err := m.open(serial.Config{
		Device:      m.cfg.SerialDevice,
		BaudRate:    m.cfg.SerialBaud,
		Delimiter:   delimiter,
		ReadTimeout: m.cfg.SerialReadTimeout,
	})
	if err != nil {
		m.fault(err)
		return
	}
	defer func() {
		if err := port.Close(); err != nil {
			slog.Error("serial close", "error", err)
		}
	}()

	// Unblock the in-flight read on shutdown.
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer stop()

	// A reading cached from the previous session may be stale.
	m.store.ClearLatest()

	if err := port.Flush(); err != nil {
		m.fault(err)
		return
	}

	// The first line after opening may be a partially received fragment
	// from a prior session; read and discard it.
	if _, err := port.ReadLine(); err != nil && !errors.Is(err, serial.ErrTimeout) {
		if ctx.Err() == nil {
			m.fault(err)
		}
		return
	}

	slog.Info("serial connected",
		"device", m.cfg.SerialDevice,
		"baud", m.cfg.SerialBaud,
	)

	for {
		if ctx.Err() != nil {
			return
		}
		line, err := port.ReadLine()
		if errors.Is(err, serial.ErrTimeout) {
			// No data this interval; the link is still up.
			continue
		}
		if err != nil {
			if ctx.Err() == nil {
				m.fault(err)
			}
			return
		}

		meas, ok := wxt.ParseSentence(line)
		if !ok {
			slog.Debug("discarding unrecognized line", "line", line)
			continue
		}
		meas.Date = time.Now().UTC().Truncate(time.Second)
		m.store.SetLatest(meas)
		slog.Debug("measurement updated",
			"wind_direction", meas.WindDirection,
			"wind_speed", meas.WindSpeed,
			"temperature", meas.Temperature,
			"relative_humidity", meas.RelativeHumidity,
			"pressure", meas.Pressure,
		)

		if m.pub != nil {
			if err := m.pub.PublishMeasurement(meas); err != nil {
				slog.Warn("publish measurement", "error", err)
			}
		}
	}
}

func (m *Manager) fault(err error) {
	m.store.SetError(time.Now().UTC().Truncate(time.Second), err.Error())
	slog.Warn("serial link fault",
		"device", m.cfg.SerialDevice,
		"error", err,
		"retry_in", m.cfg.ReconnectBackoff,
	)
}
