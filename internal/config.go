package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3001"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`

	CensoredWords   []string `env:"CENSORED_WORDS"`
	CharReplacement string   `env:"CHARACTER_REPLACEMENT,default=*"`

	BotName         string        `env:"BOT_NAME,default=TrimChat Bot"`
	BotPrefix       string        `env:"BOT_PREFIX,default=@bot"`
	BotReplyTimeout time.Duration `env:"BOT_REPLY_TIMEOUT,default=20s"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	OpenAIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIModel     string        `env:"OPENAI_MODEL,default=gpt-4o-mini"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=168h"`

	HealthInterval time.Duration `env:"HEALTH_INTERVAL,default=30s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
