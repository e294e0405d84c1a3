package domain

import "errors"

// -----------------------------------------------------------------------------
// Client-side precondition errors
// These are raised before any network call is made and are wrapped in a
// Notice carrying the text shown to the user.
// -----------------------------------------------------------------------------

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidProfile   = errors.New("invalid registration profile")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrBusy             = errors.New("operation already in progress")
)

// FallbackMessage is shown when an error carries no user-facing text.
const FallbackMessage = "An unexpected error occurred."

// UserFacing is implemented by errors whose text may be shown verbatim.
type UserFacing interface {
	UserMessage() string
}

// Notice is a precondition failure with a user-facing message
type Notice struct {
	Kind error
	Text string
}

// NewNotice wraps kind with the text shown to the user.
func NewNotice(kind error, text string) *Notice {
	return &Notice{Kind: kind, Text: text}
}

func (n *Notice) Error() string {
	return n.Kind.Error() + ": " + n.Text
}

func (n *Notice) Unwrap() error {
	return n.Kind
}

func (n *Notice) UserMessage() string {
	return n.Text
}

// UserMessage extracts the text to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf UserFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return FallbackMessage
}
