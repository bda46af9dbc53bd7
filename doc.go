// Package wanderly is the Go client SDK for the Wanderly tour-dashboard
// backend.
//
// The package glues the credential model in auth, the durable stores in
// auth/store and the refresh-coordinating http.RoundTripper in
// auth/transport into a single Client. A successful silent refresh is
// invisible to callers: an expired access token is detected on a rejected
// request, refreshed exactly once regardless of how many requests are in
// flight, and every affected request is replayed with the new credential.
// When the refresh itself fails the session is terminated, the stored
// credential is cleared and the optional OnSessionExpired callback fires
// once so the host can route the user back to authentication.
//
// Example:
//
//	cli, _ := wanderly.New("https://api.example.com",
//		wanderly.WithStore(store.NewFileStore(path)),
//		wanderly.OnSessionExpired(promptLogin))
//	identity, _ := cli.Login(ctx, email, password)
//	var tours ToursPage
//	_ = cli.GetJSON(ctx, "/api/admin/tours", &tours)
package wanderly
