// Package config loads agent configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"choreographer/internal/domain"
)

// Transport selects how agents exchange envelopes.
type Transport string

const (
	TransportHTTP Transport = "http"
	TransportFile Transport = "file"
)

// Config is shared by every agent binary; each reads the parts it needs.
type Config struct {
	Addr     string
	LogLevel string

	A2A        A2AConfig
	Queue      QueueConfig
	Audit      AuditConfig
	Reasoning  ReasoningConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Monitoring MonitoringConfig
}

// A2AConfig holds the static endpoint table and per-call timeout.
type A2AConfig struct {
	Transport Transport
	Timeout   time.Duration
	Endpoints map[domain.AgentName]string
}

// QueueConfig configures the file-backed transport.
type QueueConfig struct {
	File           string
	LeaseTTL       time.Duration
	AcquireTimeout time.Duration
	DrainInterval  time.Duration
}

// AuditConfig configures the ledger.
type AuditConfig struct {
	LogFile string
}

// ReasoningConfig enables delegated reasoning when APIKey is set.
type ReasoningConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RedisConfig configures the shared dedupe store. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures audit export. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// MonitoringConfig configures bank polling.
type MonitoringConfig struct {
	Interval        time.Duration
	TransactionsURL string
	UsersURL        string
	Accounts        []string
	Users           []string
	MockToken       string
	JWTSigningKey   string
}

// FromEnv builds a Config from environment variables so main stays lean.
// An invalid value is an error; an absent one takes its default.
func FromEnv() (Config, error) {
	var p parser
	cfg := Config{
		Addr:     p.str("ADDR", ":8080"),
		LogLevel: p.str("LOG_LEVEL", "info"),
		A2A: A2AConfig{
			Transport: Transport(strings.ToLower(p.str("A2A_TRANSPORT", string(TransportHTTP)))),
			Timeout:   p.duration("A2A_TIMEOUT", 10*time.Second),
			Endpoints: map[domain.AgentName]string{
				domain.AgentValidation: p.str("VALIDATION_AGENT_URL", "http://validation-agent:8080/a2a"),
				domain.AgentAudit:      p.str("AUDIT_AGENT_URL", "http://audit-agent:8080/a2a"),
			},
		},
		Queue: QueueConfig{
			File:           p.str("QUEUE_FILE", "/tmp/agent_messages.json"),
			LeaseTTL:       p.duration("QUEUE_LEASE_TTL", 10*time.Second),
			AcquireTimeout: p.duration("QUEUE_ACQUIRE_TIMEOUT", 5*time.Second),
			DrainInterval:  p.duration("AUDIT_DRAIN_INTERVAL", 5*time.Second),
		},
		Audit: AuditConfig{
			LogFile: p.str("AUDIT_LOG_FILE", "/tmp/audit_logs.json"),
		},
		Reasoning: ReasoningConfig{
			APIKey:  os.Getenv("GOOGLE_API_KEY"),
			Model:   p.str("REASONING_MODEL", "gemini-1.5-flash"),
			Timeout: p.duration("REASONING_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    p.list("KAFKA_BROKERS", nil),
			AuditTopic: p.str("KAFKA_AUDIT_TOPIC", "consent-audit"),
		},
		Monitoring: MonitoringConfig{
			Interval:        p.duration("MONITORING_INTERVAL", 30*time.Second),
			TransactionsURL: p.str("BANK_TRANSACTIONS_URL", "http://transactionhistory:8080/transactions"),
			UsersURL:        p.str("BANK_USERS_URL", "http://userservice:8080"),
			Accounts:        p.list("MONITORED_ACCOUNTS", []string{"1234567890", "0987654321", "1111111111"}),
			Users:           p.list("MONITORED_USERS", []string{"testuser", "alice", "bob"}),
			MockToken:       os.Getenv("MOCK_JWT_TOKEN"),
			JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
		},
	}

	if path := os.Getenv("AGENT_ENDPOINTS_FILE"); path != "" {
		if err := cfg.A2A.loadEndpointsFile(path); err != nil {
			return Config{}, err
		}
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.A2A.Transport {
	case TransportHTTP, TransportFile:
	default:
		return fmt.Errorf("A2A_TRANSPORT must be %q or %q, got %q", TransportHTTP, TransportFile, c.A2A.Transport)
	}
	return nil
}

// endpointsFile is the YAML shape of AGENT_ENDPOINTS_FILE:
//
//	agents:
//	  ValidationAgent: http://localhost:8081/a2a
//	  AuditAgent: http://localhost:8082/a2a
type endpointsFile struct {
	Agents map[string]string `yaml:"agents"`
}

func (a *A2AConfig) loadEndpointsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read endpoints file: %w", err)
	}
	var f endpointsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse endpoints file %s: %w", path, err)
	}
	for name, url := range f.Agents {
		agent := domain.AgentName(name)
		if !agent.IsKnown() {
			return fmt.Errorf("endpoints file %s: unknown agent %q", path, name)
		}
		a.Endpoints[agent] = url
	}
	return nil
}

// parser records the first invalid value it meets.
type parser struct {
	err error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Bare integers are seconds.
		if n, nerr := strconv.Atoi(v); nerr == nil {
			return time.Duration(n) * time.Second
		}
		p.fail(fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) list(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
