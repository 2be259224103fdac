package service

import (
	"github.com/AlibekovAA/inference-auth/internal/observability/metrics"
)

const (
	loginResultSuccess            = "success"
	loginResultInvalidCredentials = "invalid_credentials"
	loginResultError              = "error"
)

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func incrementAccountsRegistered() {
	metrics.AccountsRegistered.Inc()
}

func incrementLogins(result string) {
	metrics.LoginsTotal.WithLabelValues(result).Inc()
}

func incrementAuthenticationRecordFailures() {
	metrics.AuthenticationRecordFailures.Inc()
}

func recordTokenValidation(ok bool) {
	metrics.JWTValidationsTotal.Inc()
	if !ok {
		metrics.JWTValidationsFailed.Inc()
	}
}
