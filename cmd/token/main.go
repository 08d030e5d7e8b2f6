// Command token mints a bearer token for local testing against the quiz API.
// Login lives in the account service; this signs with the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/platform/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	userID := flag.String("user", "", "user id placed in the token")
	username := flag.String("username", "", "username placed in the token")
	adminType := flag.String("admin-type", security.AdminTypeAdmin, "Regular User | Admin | Super Admin")
	quizPermission := flag.String("quiz-permission", security.QuizPermissionOwn, "None | Own | All")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}

	cfg := config.Load()
	security.InitJWT(cfg.JWTKey)

	tok, err := security.GenerateToken(security.Principal{
		UserID:         *userID,
		Username:       *username,
		AdminType:      *adminType,
		QuizPermission: *quizPermission,
	}, cfg.JWTExp)
	if err != nil {
		log.WithError(err).Fatal("Could not sign token")
	}
	fmt.Println(tok)
}
