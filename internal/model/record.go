package model

// Record 可被收割并写入远端的记录
type Record interface {
	GetID() string
	SetID(id string)
	IdentityParts() (title, year string)
}

// 远端部分更新使用的字段名
const (
	FieldID          = "id"
	FieldMets        = "mets"
	FieldCentroid    = "centroid"
	FieldTrivia      = "trivia"
	FieldPaginateKey = "paginate_key"
	FieldUsername    = "username"
)

// Table 远端表，Key 为主键属性名
type Table struct {
	Name string
	Key  string
}

func (t Table) String() string { return t.Name }
