package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	// Stock
	&Product{},
	&Order{},
	&OrderItem{},
}
