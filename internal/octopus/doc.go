// Package octopus fetches daily consumption from the Octopus Energy API.
//
// The API is a plain authenticated REST endpoint: the account API key is
// the basic-auth username and the password is empty. Consumption for a
// meter point is requested for yesterday, grouped by day, and the API
// returns the intervals newest first.
//
// # Usage
//
//	client := octopus.NewClient(octopus.Config{BaseURL: cfg.Octopus.BaseURL, APIKey: cfg.Octopus.APIKey})
//	win := octopus.YesterdayWindow(time.Now())
//	results, err := client.Consumption(ctx, mpan, serial, win.Params())
//	latest, ok := octopus.Latest(results)
package octopus
