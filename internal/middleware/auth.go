package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/apierror"
)

const ClaimsKey = "claims"

// JWTClaims carry the operator identity and a flat capability list of the
// form "module:resource:action". The synchronization engine itself performs
// no authorization; capabilities only gate the HTTP affordances.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// HasCapability reports whether the token grants module:resource:action,
// honoring "*" wildcards at the resource or action position.
func (c *JWTClaims) HasCapability(module, resource, action string) bool {
	want := fmt.Sprintf("%s:%s:%s", module, resource, action)
	for _, cap := range c.Capabilities {
		if cap == want ||
			cap == fmt.Sprintf("%s:%s:*", module, resource) ||
			cap == fmt.Sprintf("%s:*:*", module) {
			return true
		}
	}
	return false
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireCapability rejects requests whose token lacks the capability.
func RequireCapability(module, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.HasCapability(module, resource, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves typed claims from the Gin context; nil when the route
// ran without JWTAuth.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
