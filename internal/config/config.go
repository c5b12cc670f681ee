/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// BookConfig holds the flip-engine tunables. Zero values fall back to the
// engine defaults, so an empty section is valid.
type BookConfig struct {
	CascadeDelayMs    int  `yaml:"cascade_delay_ms"`
	SettleDelayMs     int  `yaml:"settle_delay_ms"`
	IntroAdvancePages int  `yaml:"intro_advance_pages"`
	MountWaitMs       int  `yaml:"mount_wait_ms"`
	Audio             bool `yaml:"audio"`
}

// ContentConfig points at the optional content service that resolves
// late-arriving face payloads. The bearer token is not stored on disk; it
// lives in the OS keychain.
type ContentConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Book          BookConfig    `yaml:"book"`
	Content       ContentConfig `yaml:"content"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Book:          BookConfig{CascadeDelayMs: 180, SettleDelayMs: 400, IntroAdvancePages: 0, MountWaitMs: 3000, Audio: true},
		Content:       ContentConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvContentURL       = "FLIPBOOK_CONTENT_URL"
	EnvContentTimeoutMs = "FLIPBOOK_CONTENT_TIMEOUT_MS"
	EnvContentTLSInsec  = "FLIPBOOK_TLS_INSECURE"
	EnvTelemetryOptIn   = "FLIPBOOK_TELEMETRY_OPT_IN"
	EnvCascadeDelayMs   = "FLIPBOOK_CASCADE_DELAY_MS"
	EnvSettleDelayMs    = "FLIPBOOK_SETTLE_DELAY_MS"
	EnvIntroAdvance     = "FLIPBOOK_INTRO_ADVANCE"
	EnvAudio            = "FLIPBOOK_AUDIO"
	EnvLogLevel         = "FLIPBOOK_LOG_LEVEL"
	EnvLogFormat        = "FLIPBOOK_LOG_FORMAT"
	EnvLogFile          = "FLIPBOOK_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "Flipbook"
	keyringToken   = "content_token"
)

// tokenStore abstracts the keyring, so tests can stub it.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) {
	return keyring.Get(service, key)
}

func (osKeyring) Set(service, key, value string) error {
	return keyring.Set(service, key, value)
}

func (osKeyring) Delete(service, key string) error {
	return keyring.Delete(service, key)
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Flipbook")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Flipbook")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "flipbook")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The content token comes from the keyring and is
// returned separately so it never rides along inside the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring
// (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// DeleteToken removes the stored content token, ignoring a missing entry.
func DeleteToken() error {
	err := tokenStore.Delete(keyringService, keyringToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Book.CascadeDelayMs != 0 {
		dst.Book.CascadeDelayMs = src.Book.CascadeDelayMs
	}
	if src.Book.SettleDelayMs != 0 {
		dst.Book.SettleDelayMs = src.Book.SettleDelayMs
	}
	if src.Book.IntroAdvancePages != 0 {
		dst.Book.IntroAdvancePages = src.Book.IntroAdvancePages
	}
	if src.Book.MountWaitMs != 0 {
		dst.Book.MountWaitMs = src.Book.MountWaitMs
	}
	dst.Book.Audio = src.Book.Audio
	if src.Content.BaseURL != "" {
		dst.Content.BaseURL = src.Content.BaseURL
	}
	if src.Content.TimeoutMs != 0 {
		dst.Content.TimeoutMs = src.Content.TimeoutMs
	}
	dst.Content.TLSInsecure = src.Content.TLSInsecure
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvContentURL)); v != "" {
		cfg.Content.BaseURL = v
	}
	if n, ok := envInt(EnvContentTimeoutMs); ok {
		cfg.Content.TimeoutMs = n
	}
	if b, ok := envBool(EnvContentTLSInsec); ok {
		cfg.Content.TLSInsecure = b
	}
	if b, ok := envBool(EnvTelemetryOptIn); ok {
		cfg.General.TelemetryOptIn = b
	}
	if n, ok := envInt(EnvCascadeDelayMs); ok {
		cfg.Book.CascadeDelayMs = n
	}
	if n, ok := envInt(EnvSettleDelayMs); ok {
		cfg.Book.SettleDelayMs = n
	}
	if n, ok := envInt(EnvIntroAdvance); ok {
		cfg.Book.IntroAdvancePages = n
	}
	if b, ok := envBool(EnvAudio); ok {
		cfg.Book.Audio = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" {
		return false, false
	}
	return v == "1" || v == "true" || v == "on" || v == "yes", true
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "content.base_url":
		name = EnvContentURL
	case "content.timeout_ms":
		name = EnvContentTimeoutMs
	case "content.tls_insecure":
		name = EnvContentTLSInsec
	case "general.telemetry_opt_in":
		name = EnvTelemetryOptIn
	case "book.cascade_delay_ms":
		name = EnvCascadeDelayMs
	case "book.settle_delay_ms":
		name = EnvSettleDelayMs
	case "book.intro_advance_pages":
		name = EnvIntroAdvance
	case "book.audio":
		name = EnvAudio
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}

// CascadeDelay returns the configured cascade delay, falling back to the default.
func (b BookConfig) CascadeDelay() time.Duration {
	if b.CascadeDelayMs <= 0 {
		return time.Duration(Defaults().Book.CascadeDelayMs) * time.Millisecond
	}
	return time.Duration(b.CascadeDelayMs) * time.Millisecond
}

// SettleDelay returns the configured settle delay, falling back to the default.
func (b BookConfig) SettleDelay() time.Duration {
	if b.SettleDelayMs <= 0 {
		return time.Duration(Defaults().Book.SettleDelayMs) * time.Millisecond
	}
	return time.Duration(b.SettleDelayMs) * time.Millisecond
}

// MountWait returns the bounded mount wait, falling back to the default.
func (b BookConfig) MountWait() time.Duration {
	if b.MountWaitMs <= 0 {
		return time.Duration(Defaults().Book.MountWaitMs) * time.Millisecond
	}
	return time.Duration(b.MountWaitMs) * time.Millisecond
}

// EffectiveTimeout returns the content client timeout as a duration.
func (c ContentConfig) EffectiveTimeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return time.Duration(Defaults().Content.TimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
