package domain

// Message is one outgoing email, built per send action.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// AudioExtensions lists the accepted upload extensions.
var AudioExtensions = []string{".wav", ".mp3"}
