// Dev utility: mints a capability JWT for exercising the API locally.
//
//	go run ./cmd/gentoken -user admin -caps "pos:*:*" -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/middleware"
)

func main() {
	var (
		user   = flag.String("user", "dev", "username embedded in the token")
		caps   = flag.String("caps", "pos:*:*", "comma-separated capabilities (module:resource:action)")
		ttl    = flag.Duration("ttl", 24*time.Hour, "token lifetime")
		secret = flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")
	)
	flag.Parse()

	if *secret == "" {
		*secret = "dev-secret"
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:       uuid.NewString(),
		Username:     *user,
		Capabilities: strings.Split(*caps, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
