package middleware

import (
	jwtPkg "DeepfakeDetector/pkg/jwt"
	"DeepfakeDetector/pkg/handlerUtil"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	SubjectKey = "subject"
	RoleKey    = "role"
)

type tokenMiddleware struct {
	secret string
}

func newTokenMiddleware(secret string) *tokenMiddleware {
	return &tokenMiddleware{secret: secret}
}

// NewTokenMiddleware is a no-op until a JWT secret is configured.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if m.token.secret == "" {
		return ctx.Next()
	}

	requestID := m.GetRequestID(ctx)

	token, err := jwtPkg.VerifyTokenHeader(ctx, m.token.secret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"client_ip":  ctx.IP(),
			"error":      err.Error(),
		}).Warn("Token verification failed")
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, requestID, "access token invalid or expired")
	}

	subject, role := jwtPkg.Claims(token)
	ctx.Locals(SubjectKey, subject)
	ctx.Locals(RoleKey, role)

	m.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"role":       role,
	}).Debug("Authentication successful")

	return ctx.Next()
}
