package domain

// InternalChartPath is the bundled generic chart used when the chart input
// is the "app" alias. The image ships this chart so app teams can deploy
// without maintaining one of their own.
const InternalChartPath = "/usr/src/chart/app"

// ReleaseName computes the effective release name for an app on a track.
// The stable track keeps the bare app name; every other track gets a
// "-<track>" suffix so parallel variants never collide.
func ReleaseName(app, track string) string {
	if track == TrackStable {
		return app
	}
	return app + "-" + track
}

// ChartRef resolves the chart input to the reference handed to helm.
// The "app" alias maps to the bundled chart; anything else passes through
// unchanged (repo-qualified reference or local path).
func ChartRef(chart string) string {
	if chart == "app" {
		return InternalChartPath
	}
	return chart
}
