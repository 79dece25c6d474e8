package providers

import (
	_ "github.com/teambots/teambots/src/ai/gateway"
	_ "github.com/teambots/teambots/src/ai/gemini"
)
