package outcome

// Summary partitions a set of outcomes. Downloaded, SkippedExisting,
// SkippedNoAsset and Failed always add up to Total.
type Summary struct {
	Downloaded      int `yaml:"downloaded"`
	SkippedExisting int `yaml:"skipped_existing"`
	SkippedNoAsset  int `yaml:"skipped_no_asset"`
	Failed          int `yaml:"failed"`
	Total           int `yaml:"total"`
}

func Summarize(outs []Outcome) Summary {
	s := Summary{}
	for _, o := range outs {
		s.Add(o)
	}
	return s
}

func (s *Summary) Add(o Outcome) {
	switch o.kind {
	case Downloaded:
		s.Downloaded++
	case SkippedExisting:
		s.SkippedExisting++
	case SkippedNoAsset:
		s.SkippedNoAsset++
	default:
		s.Failed++
	}
	s.Total++
}
