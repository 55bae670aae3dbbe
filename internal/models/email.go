package models

type EmailMessage struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}

const PurposePasswordReset = "password_reset"
