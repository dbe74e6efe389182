// Package client is the host-facing surface of kvbridge.
//
// Two clients share one core. Client blocks the calling goroutine for each
// call; AsyncClient schedules the call on the shared runtime and returns a
// Future. Both expose the same operations:
//
//	c, err := client.New(config.NewClientConfig(config.Host{Name: "127.0.0.1", Port: 3000}))
//	if err != nil {
//		return err
//	}
//	if err := c.Connect(ctx); err != nil {
//		return err
//	}
//	defer c.Close()
//
//	key := record.MustKey("test", "demo", "user:1")
//	err = c.Put(ctx, key, map[string]any{"name": "ada", "visits": 1})
//	rec, err := c.Get(ctx, key)
//
// Host values are converted with the value package, policies are resolved
// per call from the client defaults plus WithPolicy overrides, and every
// failure is a *kverrors.Error carrying the server result code.
//
// A host with an interpreter lock passes it with WithExecutionLock. The
// client expects the lock to be held on entry, releases it for the network
// round trip and takes it again before converting the result.
package client
