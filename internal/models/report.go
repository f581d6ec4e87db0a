package models

// Subject is one of the fixed tutoring subjects.
type Subject string

const (
	SubjectEnglish Subject = "英文"
	SubjectMath    Subject = "數學"
	SubjectChinese Subject = "國文"
	SubjectScience Subject = "自然"
	SubjectSocial  Subject = "社會"
)

// Subjects lists the closed subject set in display order.
var Subjects = []Subject{SubjectEnglish, SubjectMath, SubjectChinese, SubjectScience, SubjectSocial}

// Category classifies a session as a tutoring or a makeup class.
type Category string

const (
	CategoryTutoring Category = "輔導"
	CategoryMakeup   Category = "補課"
)

// DefaultMakeupSubject is stored on makeup records whose subject is irrelevant.
const DefaultMakeupSubject = SubjectEnglish

// SubjectTopics is the fixed topic vocabulary per tutoring subject.
var SubjectTopics = map[Subject][]string{
	SubjectEnglish: {"單字", "課文閱讀", "文法解析", "聽力練習", "寫作指導"},
	SubjectMath:    {"觀念講解", "計算練習", "幾何圖形", "應用問題", "歷屆試題"},
	SubjectChinese: {"古文解析", "白話文閱讀", "作文指導", "修辭與成語", "國學常識"},
	SubjectScience: {"生物", "理化計算", "實驗觀念", "地球科學", "觀念統整"},
	SubjectSocial:  {"歷史脈絡", "地理環境", "公民素養", "時事分析", "重點整理"},
}

// MakeupTopics is the fixed vocabulary for makeup sessions, regardless of subject.
var MakeupTopics = []string{"課本", "習作", "閱讀", "小考", "測驗"}

// Report is one recorded tutoring or makeup session. JSON field names match
// the legacy stored format; category may be absent on old records.
type Report struct {
	ID          string   `json:"id"`
	TutorName   string   `json:"tutorName"`
	Date        string   `json:"date"`
	Category    Category `json:"category,omitempty"`
	StudentName string   `json:"studentName"`
	Subject     Subject  `json:"subject"`
	Topics      []string `json:"topics"`
	Details     string   `json:"details"`
	Timestamp   int64    `json:"timestamp"`
}

// EffectiveCategory normalizes the legacy absent category to tutoring. Every
// consumer reads the category through this, never the raw field.
func (r Report) EffectiveCategory() Category {
	if r.Category == "" {
		return CategoryTutoring
	}
	return r.Category
}

// ValidSubject reports whether s belongs to the closed subject set.
func ValidSubject(s Subject) bool {
	_, ok := SubjectTopics[s]
	return ok
}

// TopicVocabulary returns the fixed topic options for a category/subject pair.
func TopicVocabulary(category Category, subject Subject) []string {
	if category == CategoryMakeup {
		return MakeupTopics
	}
	return SubjectTopics[subject]
}
