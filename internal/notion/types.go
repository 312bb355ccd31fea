package notion

// Commit is the per-commit input to a sync attempt. The system holds no
// authoritative task copy; these are transient derived fields.
type Commit struct {
	Message    string
	Repository string
	Author     string
	URL        string
}

// Page is a Notion page as returned by a database query.
type Page struct {
	ID string `json:"id"`
}

// User is a Notion workspace user.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ---- Property value shapes for the Notion API ----

type textContent struct {
	Content string `json:"content"`
}

type richTextEntry struct {
	Text textContent `json:"text"`
}

func richText(s string) map[string]any {
	return map[string]any{"rich_text": []richTextEntry{{Text: textContent{Content: s}}}}
}

func titleValue(s string) map[string]any {
	return map[string]any{"title": []richTextEntry{{Text: textContent{Content: s}}}}
}

func selectValue(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func urlValue(u string) map[string]any {
	return map[string]any{"url": u}
}

func peopleValue(userID string) map[string]any {
	return map[string]any{"people": []map[string]any{{"id": userID}}}
}
