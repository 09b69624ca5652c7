// Package instrumentation provides OpenTelemetry metrics and tracing
// for the IndieAuth client.
//
// Instrumentation is optional and disabled by default: when no meter or
// tracer provider is supplied, no-op providers are used and recording
// has effectively zero overhead.
//
// # Example Usage
//
//	inst, err := instrumentation.New(instrumentation.Config{
//	    ServiceName:    "my-service",
//	    ServiceVersion: "1.2.3",
//	    Enabled:        true,
//	    MeterProvider:  meterProvider,
//	    TracerProvider: tracerProvider,
//	})
//	if err != nil {
//	    return err
//	}
//	defer inst.Shutdown(ctx)
//
//	client := indieauth.NewClient(indieauth.Config{
//	    Instrumentation: inst,
//	})
package instrumentation
