package model

import "strings"

// Member 会员记录（辛普森一家的常驻角色）
type Member struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	MemberType string `json:"member_type,omitempty"`
}

func (m *Member) GetID() string { return m.ID }

func (m *Member) SetID(id string) { m.ID = id }

// IdentityParts 角色没有年份，以全名作为标题
func (m *Member) IdentityParts() (string, string) {
	return strings.TrimSpace(m.FirstName + " " + m.LastName), ""
}

// NewMemberFromName 按首个空白拆分姓名，username 为 first_last 的小写形式
func NewMemberFromName(name string) *Member {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return nil
	}
	m := &Member{FirstName: fields[0]}
	if len(fields) == 1 {
		m.Username = m.FirstName
		return m
	}
	m.LastName = strings.Join(fields[1:], " ")
	m.Username = strings.ToLower(m.FirstName + "_" + strings.Join(fields[1:], "_"))
	return m
}
