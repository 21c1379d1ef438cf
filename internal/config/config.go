package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// SerialDevice is the path of the weather station's serial port.
	SerialDevice      string
	SerialBaud        int
	SerialReadTimeout time.Duration

	// ReconnectBackoff is how long the link manager waits after a
	// connection or session fault before reopening the device.
	ReconnectBackoff time.Duration

	// MQTTBroker enables telemetry publishing when non-empty.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	StationID    string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":9001"
	}

	serialDevice := strings.TrimSpace(os.Getenv("SERIAL_DEVICE"))
	if serialDevice == "" {
		serialDevice = "/dev/ttyACM0"
	}

	serialBaudStr := strings.TrimSpace(os.Getenv("SERIAL_BAUD"))
	if serialBaudStr == "" {
		serialBaudStr = "4800"
	}
	serialBaud, err := strconv.Atoi(serialBaudStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SERIAL_BAUD %q: %w", serialBaudStr, err)
	}

	serialReadTimeoutStr := strings.TrimSpace(os.Getenv("SERIAL_READ_TIMEOUT"))
	if serialReadTimeoutStr == "" {
		serialReadTimeoutStr = "5s"
	}
	serialReadTimeout, err := time.ParseDuration(serialReadTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SERIAL_READ_TIMEOUT %q: %w", serialReadTimeoutStr, err)
	}
	if serialReadTimeout <= 0 {
		return Config{}, fmt.Errorf("SERIAL_READ_TIMEOUT must be positive, got %v", serialReadTimeout)
	}

	reconnectBackoffStr := strings.TrimSpace(os.Getenv("RECONNECT_BACKOFF"))
	if reconnectBackoffStr == "" {
		reconnectBackoffStr = "10s"
	}
	reconnectBackoff, err := time.ParseDuration(reconnectBackoffStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RECONNECT_BACKOFF %q: %w", reconnectBackoffStr, err)
	}
	if reconnectBackoff <= 0 {
		return Config{}, fmt.Errorf("RECONNECT_BACKOFF must be positive, got %v", reconnectBackoff)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "vaisalad"
	}

	stationID := strings.TrimSpace(os.Getenv("STATION_ID"))
	if stationID == "" {
		stationID = "wxt520"
	}

	return Config{
		AppEnv:            appEnv,
		LogLevel:          level,
		HTTPAddr:          httpAddr,
		SerialDevice:      serialDevice,
		SerialBaud:        serialBaud,
		SerialReadTimeout: serialReadTimeout,
		ReconnectBackoff:  reconnectBackoff,
		MQTTBroker:        mqttBroker,
		MQTTPort:          mqttPort,
		MQTTClientID:      mqttClientID,
		StationID:         stationID,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
