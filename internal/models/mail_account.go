package models

// MailAccount is a disposable SMTP mailbox used when the configured mail
// server is unreachable. Messages sent through it are only viewable in the
// provider's web inbox.
type MailAccount struct {
	User   string `json:"user"`
	Pass   string `json:"pass"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure bool   `json:"secure"`
	Web    string `json:"web"`
}
