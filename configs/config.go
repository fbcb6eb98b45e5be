package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Server holds the settings of the HTTP service.
type Server struct {
	Listen      string        `yaml:"listen"`
	DataDir     string        `yaml:"data_dir"`
	DBPath      string        `yaml:"db_path"`
	RenderScale float64       `yaml:"render_scale"`
	Settle      time.Duration `yaml:"settle"`
	MaxRecords  int           `yaml:"max_records"`
	JobTTL      time.Duration `yaml:"job_ttl"`
}

func DefaultServer() *Server {
	return &Server{
		Listen:      ":8080",
		DataDir:     "./data",
		DBPath:      "./data/sonicstencil.db",
		RenderScale: 2,
		Settle:      0,
		MaxRecords:  5000,
		JobTTL:      30 * time.Minute,
	}
}

// LoadEnv loads ./.env when present. A missing file is not an error.
func LoadEnv(service string) {
	if err := godotenv.Load("./.env"); err != nil {
		log.Debugf("%s: no .env file loaded: %v", service, err)
		return
	}
	log.Info(".env file loaded.")
}

// LoadServer reads path over the defaults and applies environment
// overrides. A missing file leaves the defaults in place.
func LoadServer(path string) (*Server, error) {
	cfg := DefaultServer()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Infof("config %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Server) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		c.Listen = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("RENDER_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RENDER_SCALE: %w", err)
		}
		c.RenderScale = f
	}
	return nil
}

func (c *Server) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.RenderScale <= 0 || c.RenderScale > 8 {
		return fmt.Errorf("render_scale must be in (0, 8]")
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("max_records must be > 0")
	}
	if c.Settle < 0 {
		return fmt.Errorf("settle must not be negative")
	}
	return nil
}

// Logging sets the logrus level from LOG_LEVEL and, unless LOG_STDOUT is
// set, sends output to .logs/<service>.log.
func Logging(service string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level := log.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		l, err := log.ParseLevel(v)
		if err != nil {
			log.Warnf("bad LOG_LEVEL %q, using info", v)
		} else {
			level = l
		}
	}
	log.SetLevel(level)

	if os.Getenv("LOG_STDOUT") != "" {
		return
	}
	logFolder := ".logs"
	if err := os.MkdirAll(logFolder, 0o755); err != nil {
		log.Warnf("unable to create folder for log %s", err)
		return
	}
	file, err := os.OpenFile(filepath.Join(logFolder, service+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warnf("unable to open log file, logging to stderr: %v", err)
		return
	}
	log.SetOutput(file)
	log.Infof("log to file started for service: %s", service)
}
