package bot

const voiceReply = "🎙 Голосовые сообщения пока не поддерживаются. Напишите, пожалуйста, текстом."

// VoiceNotSupported answers voice notes politely.
func VoiceNotSupported(c *Context) error {
	c.Reply(voiceReply, nil)
	return nil
}
