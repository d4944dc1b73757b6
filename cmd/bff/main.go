// Command bff runs the quotes backend-for-frontend: an authenticated proxy
// that forwards browser requests to the quotes, reference and faulty
// services with a freshly minted identity token per call.
//
// Usage:
//
//	# Start the BFF with defaults and environment overrides
//	bff run
//
//	# Start with a configuration file, reloaded on change
//	bff run --config /etc/bff/config.yaml
//
//	# Run the auxiliary services used in development and chaos tests
//	bff reference
//	bff faulty --failure-ratio 0.3
//
//	# Print the effective upstreams and timeouts
//	bff validate --output json
//
//	# Inspect the audit trail
//	bff audit list --limit 20
package main

func main() {
	Execute()
}
