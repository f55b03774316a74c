package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	// Shop
	&Product{},
	&Sale{},
	&Review{},
	&Chat{},
	&ChatMessage{},
}
