package main

type sessionKey string

const (
	investigatorSessionKey = sessionKey("investigator")
	selectionSessionKey    = sessionKey("selection")
	assistantSessionKey    = sessionKey("assistantOpen")
	videoChatSessionKey    = sessionKey("videoChat")
)

// scoped keys a session value to a case or an evidence item.
func (k sessionKey) scoped(id string) string {
	return string(k) + ":" + id
}
