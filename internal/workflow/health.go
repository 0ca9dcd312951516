package workflow

// DescribeFunc reports a component's role and goal. A component that
// cannot describe itself is treated as unhealthy.
type DescribeFunc func() (role, goal string, err error)

// Health probes each component and reports a status per name:
// "healthy" when both role and goal are present, "degraded" when either
// is blank, "unhealthy" when the probe itself fails.
func Health(components map[string]DescribeFunc) map[string]string {
	statuses := make(map[string]string, len(components))
	for name, describe := range components {
		if describe == nil {
			statuses[name] = "unhealthy"
			continue
		}
		role, goal, err := describe()
		switch {
		case err != nil:
			statuses[name] = "unhealthy"
		case role == "" || goal == "":
			statuses[name] = "degraded"
		default:
			statuses[name] = "healthy"
		}
	}
	return statuses
}
