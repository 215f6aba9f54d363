/*
Package observability turns engine lifecycle hooks into Prometheus metrics.

Metrics registers its collectors on a caller-supplied registerer and exposes a
domain.LifecycleHooks value to pass to an engine. Summary reads the values back
from a gatherer, for reports and tests.
*/
package observability
