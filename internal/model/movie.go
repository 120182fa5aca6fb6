package model

// Movie 电影记录（烂番茄"史上最佳电影"榜单）
type Movie struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Year     string   `json:"year"`
	Rating   string   `json:"rating"`
	Review   string   `json:"review"`
	Synopsis string   `json:"synopsis"`
	Cast     []string `json:"cast"`
	Director string   `json:"director"`
}

func (m *Movie) GetID() string { return m.ID }

func (m *Movie) SetID(id string) { m.ID = id }

// IdentityParts 用于生成内容 ID 的标题与年份
func (m *Movie) IdentityParts() (string, string) {
	return m.Title, m.Year
}

// Label 日志中展示用，如 "The Godfather (1972)"
func (m *Movie) Label() string {
	if m.Year == "" {
		return m.Title
	}
	return m.Title + " (" + m.Year + ")"
}
