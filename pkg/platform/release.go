package platform

// releaseRange maps a span of Windows build numbers, from the first
// preview build through the release build, to a feature-update label.
type releaseRange struct {
	previewStart uint32
	releaseBuild uint32
	label        string
}

// releaseTable is ordered ascending and authored disjoint. Lookup is a
// first-match linear scan so results never depend on map iteration
// order; if a future edit overlapped two ranges the earlier one wins.
var releaseTable = []releaseRange{
	{9841, 10240, "1507"},
	{10525, 10586, "1511"},
	{11082, 14393, "1607"},
	{14901, 15063, "1703"},
	{16170, 16299, "1709"},
	{16353, 17134, "1803"},
	{17604, 17763, "1809"},
	{18204, 18362, "1903"},
	{18836, 18908, "20H1"},
}

// ReleaseLabel maps a Windows build number to its feature-update release
// label (e.g. 18362 -> "1903"). The second return is false when the
// build falls outside every known range.
func ReleaseLabel(build uint32) (string, bool) {
	for _, r := range releaseTable {
		if build >= r.previewStart && build <= r.releaseBuild {
			return r.label, true
		}
	}
	return "", false
}
