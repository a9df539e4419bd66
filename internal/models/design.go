package models

import "strings"

// DesignModel is a table model edited in the session before it is applied
// to the warehouse.
type DesignModel struct {
	Tables        []TableDef      `json:"tables" yaml:"tables"`
	Relationships []ForeignKeyDef `json:"relationships" yaml:"relationships"`
}

func (m DesignModel) Clone() DesignModel {
	c := DesignModel{}
	for _, t := range m.Tables {
		t.Columns = append([]ColumnDef(nil), t.Columns...)
		c.Tables = append(c.Tables, t)
	}
	for _, r := range m.Relationships {
		r.SourceColumns = append([]string(nil), r.SourceColumns...)
		r.TargetColumns = append([]string(nil), r.TargetColumns...)
		c.Relationships = append(c.Relationships, r)
	}

	return c
}

// TableIndex returns the position of the named table or -1.
func (m DesignModel) TableIndex(name string) int {
	for i, t := range m.Tables {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}

	return -1
}

// UpsertTable replaces the table with the same name or appends it. A
// replaced table keeps its stored name so relationships still match it.
func (m *DesignModel) UpsertTable(t TableDef) {
	if i := m.TableIndex(t.Name); i >= 0 {
		t.Name = m.Tables[i].Name
		m.Tables[i] = t
		return
	}
	m.Tables = append(m.Tables, t)
}

// RemoveTable drops the table and every relationship mentioning it. It
// reports whether the table existed.
func (m *DesignModel) RemoveTable(name string) bool {
	i := m.TableIndex(name)
	if i < 0 {
		return false
	}
	m.Tables = append(m.Tables[:i:i], m.Tables[i+1:]...)

	kept := m.Relationships[:0:0]
	for _, r := range m.Relationships {
		if strings.EqualFold(r.SourceTable, name) || strings.EqualFold(r.TargetTable, name) {
			continue
		}
		kept = append(kept, r)
	}
	m.Relationships = kept

	return true
}

// RelationshipIndex returns the position of the named relationship or -1.
func (m DesignModel) RelationshipIndex(name string) int {
	for i, r := range m.Relationships {
		if strings.EqualFold(r.Name, name) {
			return i
		}
	}

	return -1
}

func (m *DesignModel) RemoveRelationship(name string) bool {
	i := m.RelationshipIndex(name)
	if i < 0 {
		return false
	}
	m.Relationships = append(m.Relationships[:i:i], m.Relationships[i+1:]...)

	return true
}
