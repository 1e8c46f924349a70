// Package instagram is a small client for the private JSON API behind the
// Instagram apps, limited to what an export of saved posts needs: validating a
// sessionid cookie, listing saved collections, paging through saved posts and
// fetching media bytes from the CDN.
//
// The rest of igsaved only sees the Service interface, so the client can be
// swapped for a stub in tests.
//
//	client := instagram.NewClient(instagram.ClientConfig{
//	    BaseURL:   cfg.Instagram.BaseURL,
//	    UserAgent: cfg.Instagram.UserAgent,
//	    Timeout:   cfg.Instagram.Timeout,
//	}, ratelimit.NewPacer(30, 3), log)
//
//	user, err := client.Login(ctx, sessionID)
//	if err != nil {
//	    var igErr *instagram.Error
//	    if errors.As(err, &igErr) && igErr.Type == instagram.ErrorTypeAuth {
//	        // session expired or invalid
//	    }
//	}
//
// API requests are paced by a ratelimit.Limiter. Nothing is retried.
package instagram
