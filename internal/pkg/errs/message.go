package errs

// UserMessage maps an engine error to the text shown to end users.
// Classification is done by the caller-provided matchers so this package stays
// free of domain imports.
type MessageRule struct {
	Match   error
	Message string
}

const (
	MessageTryAgain = "Something went wrong on our side, please try again."
	MessageGeneric  = "Your request could not be processed."
)

func UserMessage(err error, rules ...MessageRule) string {
	if err == nil {
		return ""
	}
	for _, r := range rules {
		if Is(err, r.Match) {
			return r.Message
		}
	}
	if Is(err, ErrTransient) {
		return MessageTryAgain
	}
	return MessageGeneric
}
