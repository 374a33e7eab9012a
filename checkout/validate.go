package checkout

import (
	"regexp"
	"strings"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Validation messages, in the order they are reported.
const (
	MsgCardHolder = "Enter the cardholder's name."
	MsgCardNumber = "The card number must have exactly 16 digits."
	MsgExpiry     = "The expiry date must use the MM/YY format (for example 08/27)."
	MsgCVV        = "The CVV must have 3 digits."

	MsgBuyerName = "Enter your name."
	MsgAddress   = "Enter a delivery address."
	MsgEmail     = "Enter a contact email."
)

// Payment is the card form. It is validated and dropped, never stored.
type Payment struct {
	CardHolder string
	CardNumber string
	Expiry     string
	CVV        string
}

// Shipping is the contact form of the shipping variant.
type Shipping struct {
	BuyerName string
	Address   string
	Email     string
}

// ValidationError carries every problem found in one form submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "checkout: " + strings.Join(e.Messages, " ")
}

// ValidatePayment checks all four card fields and returns every violation.
func ValidatePayment(p Payment) []string {
	var msgs []string
	if strings.TrimSpace(p.CardHolder) == "" {
		msgs = append(msgs, MsgCardHolder)
	}
	if !cardNumberRe.MatchString(spaceRe.ReplaceAllString(p.CardNumber, "")) {
		msgs = append(msgs, MsgCardNumber)
	}
	if !expiryRe.MatchString(strings.TrimSpace(p.Expiry)) {
		msgs = append(msgs, MsgExpiry)
	}
	if !cvvRe.MatchString(strings.TrimSpace(p.CVV)) {
		msgs = append(msgs, MsgCVV)
	}
	return msgs
}

// ValidateShipping requires every contact field after trimming.
func ValidateShipping(s Shipping) []string {
	var msgs []string
	if strings.TrimSpace(s.BuyerName) == "" {
		msgs = append(msgs, MsgBuyerName)
	}
	if strings.TrimSpace(s.Address) == "" {
		msgs = append(msgs, MsgAddress)
	}
	if strings.TrimSpace(s.Email) == "" {
		msgs = append(msgs, MsgEmail)
	}
	return msgs
}
