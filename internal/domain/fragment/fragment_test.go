package fragment

import "testing"

func TestMentionsKnowledgeBase(t *testing.T) {
	f := Fragment{Metadata: map[string]string{"functionality": "MML", "page": "3"}}
	if !f.MentionsKnowledgeBase("mml") {
		t.Error("expected case-insensitive match on metadata value")
	}
	if f.MentionsKnowledgeBase("alarm_handling") {
		t.Error("unexpected match")
	}
	if f.MentionsKnowledgeBase("") {
		t.Error("empty knowledge base must not match")
	}

	bySource := Fragment{Source: "docs/alarm_handling/guide.pdf"}
	if !bySource.MentionsKnowledgeBase("Alarm_Handling") {
		t.Error("expected match on source path")
	}
}

func TestSourceNameAndPage(t *testing.T) {
	f := Fragment{Source: "/data/mml/commands.pdf"}
	if f.SourceName() != "commands.pdf" {
		t.Errorf("SourceName() = %q", f.SourceName())
	}
	if f.PageLabel() != UnknownPage {
		t.Errorf("PageLabel() = %q", f.PageLabel())
	}
	if (Fragment{}).SourceName() != UnknownSource {
		t.Error("expected default source name")
	}
}

func TestRenumber(t *testing.T) {
	fs := make([]Fragment, 3)
	Renumber(fs)
	for i, f := range fs {
		if f.ID != i+1 {
			t.Errorf("fragment %d has ID %d", i, f.ID)
		}
	}
}
