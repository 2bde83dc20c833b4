package auth

import (
	"errors"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrInitDataExpired = errors.New("telegram init data expired")
	ErrNoTelegramUser  = errors.New("user data not found in init data")
)

// TelegramUser is the "user" object inside mini-app init data.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
}

// InitDataVerifier checks the signature Telegram puts on WebApp init data.
type InitDataVerifier struct {
	token  string
	maxAge time.Duration
}

// NewInitDataVerifier returns a verifier for botToken. A zero maxAge
// disables the auth_date age check.
func NewInitDataVerifier(botToken string, maxAge time.Duration) *InitDataVerifier {
	return &InitDataVerifier{token: botToken, maxAge: maxAge}
}

// Verify validates the hash and auth_date of raw init data and returns the
// user it describes.
func (v *InitDataVerifier) Verify(raw string) (TelegramUser, error) {
	if err := initdata.Validate(raw, v.token, v.maxAge); err != nil {
		if errors.Is(err, initdata.ErrExpired) {
			return TelegramUser{}, ErrInitDataExpired
		}
		return TelegramUser{}, ErrInvalidInitData
	}
	data, err := initdata.Parse(raw)
	if err != nil {
		return TelegramUser{}, ErrInvalidInitData
	}
	if data.User.ID == 0 {
		return TelegramUser{}, ErrNoTelegramUser
	}
	return TelegramUser{
		ID:           data.User.ID,
		FirstName:    data.User.FirstName,
		LastName:     data.User.LastName,
		Username:     data.User.Username,
		LanguageCode: data.User.LanguageCode,
	}, nil
}
