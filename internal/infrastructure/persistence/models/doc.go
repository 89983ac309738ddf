// Package models contains GORM persistence models for the point-of-sale
// schema. Models carry the table and column mapping; domain entities stay
// free of ORM tags. Each model converts to and from its domain entity.
//
// Tables:
//   - productos: catalog items and the on-hand stock counter
//   - clientes: registered customers
//   - usuarios: operators
//   - ventas: sale headers
//   - venta_detalles: sale lines
package models
