package main

import (
	"strings"
	"time"
)

type Config struct {
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	LogLevel                  string        `env:"LOG_LEVEL,default=info"`
	JWTSecret                 string        `env:"JWT_SECRET,required=true"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath             string        `env:"BLUGE_FILEPATH,required=true"`
	DispatchBufferSize        int           `env:"DISPATCH_BUFFER_SIZE,default=256"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=5s"`
	ShutdownTimeout           time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	ModerationWords           string        `env:"MODERATION_WORDS"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}

// MaskRune returns the replacement character as the rune the moderation
// filter wants. The env value is a string because go-env parses rune
// fields numerically; only the first rune counts.
func (c Config) MaskRune() rune {
	for _, r := range c.ModerationCharReplacement {
		return r
	}
	return '*'
}

// BannedWords splits the comma separated MODERATION_WORDS value. An empty
// value disables masking entirely.
func (c Config) BannedWords() []string {
	if c.ModerationWords == "" {
		return nil
	}
	words := strings.Split(c.ModerationWords, ",")
	for i := range words {
		words[i] = strings.TrimSpace(words[i])
	}
	return words
}
