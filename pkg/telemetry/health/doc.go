// Package health provides liveness, readiness and version endpoints.
//
// Components register readiness checks by name:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("storage", store.Ping)
//	checker.RegisterCheck("rules", func(ctx context.Context) error {
//	    if cat.Len() == 0 {
//	        return errors.New("no rules loaded")
//	    }
//	    return nil
//	})
//
// The readiness endpoint responds 503 while any check fails.
package health
