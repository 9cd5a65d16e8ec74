// package main provides a utility for creating tokens for authenticating with
// Spark! Bytes, either through Firebase or as locally signed development tokens.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/sparkbytes/sparkbytes/auth"
)

func main() {
	var (
		firebaseProjectID = flag.String("project-id", os.Getenv("SPARKBYTES_FIREBASE_PROJECT"), "The firebase project-id used for auth")
		serviceAccount    = flag.String("service-account", "", "Google service account JSON file associated with the firebase project")
		apiKey            = flag.String("api-key", "", "A Google API key associated with the firebase project")
		devSecret         = flag.String("dev-secret", os.Getenv("SPARKBYTES_DEV_SECRET"), "sign a development token with this secret instead of using firebase")
		email             = flag.String("email", "", "email claim of the token, defaults to <token name>@bu.edu")
		ttl               = flag.Duration("ttl", time.Hour, "lifetime of development tokens")
	)
	flag.Parse()

	tokenName := flag.Arg(0)
	if tokenName == "" {
		log.Fatal("usage: sparkbytes-token [flags] <token name>")
	}

	uid := fmt.Sprintf("service-%s", tokenName)
	if *email == "" {
		*email = tokenName + "@bu.edu"
	}

	if *devSecret != "" {
		dev := &auth.DevProvider{Secret: []byte(*devSecret)}
		token, err := dev.Mint(uid, *email, *ttl)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID: *firebaseProjectID,
	}, option.WithCredentialsFile(*serviceAccount))
	if err != nil {
		log.Fatal(err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		log.Fatal(err)
	}

	customToken, err := client.CustomTokenWithClaims(ctx, uid, map[string]interface{}{
		"email": *email,
	})
	if err != nil {
		log.Fatal(err)
	}

	verifyReq, err := json.Marshal(map[string]interface{}{
		"returnSecureToken": true,
		"token":             customToken,
	})
	if err != nil {
		log.Fatal(err)
	}

	verifyURL := fmt.Sprintf("https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken?key=%s", *apiKey)
	resp, err := http.Post(verifyURL, "application/json", bytes.NewReader(verifyReq))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		log.Fatal(err)
	}
}
