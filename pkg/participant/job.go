package participant

import "strings"

// Job is a participant's classification during the program term.
type Job string

const (
	Staff     Job = "Staff"
	Scientist Job = "Scientist"
	Faculty   Job = "Faculty"
	Engineer  Job = "Engineer"
	Postdoc   Job = "Postdoc"
	Student   Job = "Student"
	Unknown   Job = "Unknown"
)

// Jobs lists every classification.
var Jobs = []Job{Staff, Scientist, Faculty, Engineer, Postdoc, Student, Unknown}

// ParseJob matches s case-insensitively against the known classifications.
// Anything else is Unknown.
func ParseJob(s string) Job {
	s = strings.TrimSpace(s)
	for _, j := range Jobs {
		if strings.EqualFold(s, string(j)) {
			return j
		}
	}
	return Unknown
}
