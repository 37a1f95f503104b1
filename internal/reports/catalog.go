package reports

import (
	"math"
	"strconv"
)

// Report is one static warehouse query exported to CSV.
type Report struct {
	Name     string
	FileName string
	Query    string
	// Derived columns are appended to every row after the query columns.
	Derived []DerivedColumn
}

// DerivedColumn computes an extra column from the values of a row.
type DerivedColumn struct {
	Name    string
	Compute func(row map[string]string) string
}

// Difference derives minuend - subtrahend rounded to cents.
// Unparsable inputs leave the cell empty.
func Difference(name, minuend, subtrahend string) DerivedColumn {
	return DerivedColumn{
		Name: name,
		Compute: func(row map[string]string) string {
			a, errA := strconv.ParseFloat(row[minuend], 64)
			b, errB := strconv.ParseFloat(row[subtrahend], 64)
			if errA != nil || errB != nil {
				return ""
			}
			return strconv.FormatFloat(math.Round((a-b)*100)/100, 'f', 2, 64)
		},
	}
}

// Catalog returns the built-in warehouse reports.
func Catalog() []Report {
	return []Report{
		{
			Name:     "repuestos_sin_actualizar",
			FileName: "repuestos_sin_actualizar.csv",
			Query: `
SELECT r.id, r.codigo, r.descripcion, m.nombre AS marca, ROUND(r.precio, 2) AS precio, p.nombre AS proveedor,
       a.fecha AS fecha_ultima_actualizacion
FROM Repuesto r
JOIN Proveedor p ON r.proveedor_id = p.id
JOIN Marca m ON r.marca_id = m.id
LEFT JOIN Actualizacion a ON r.ultima_actualizacion_id = a.id
WHERE p.nombre = 'Autofix'
  AND (a.fecha IS NULL OR a.fecha < DATE_SUB(NOW(), INTERVAL 1 MONTH))
ORDER BY a.fecha DESC`,
		},
		{
			Name:     "incremento_marcas",
			FileName: "incremento_marcas.csv",
			Query: `
SELECT r.id, r.codigo, r.descripcion, m.nombre AS marca,
       ROUND(r.precio, 2) AS precio_actual,
       ROUND(r.precio * 1.15, 2) AS precio_propuesto,
       p.nombre AS proveedor
FROM Repuesto r
JOIN Marca m ON r.marca_id = m.id
JOIN Proveedor p ON r.proveedor_id = p.id
WHERE m.nombre IN ('ELEXA', 'BERU', 'SH', 'MASTERFILT', 'RN')
ORDER BY m.nombre, r.precio DESC`,
			Derived: []DerivedColumn{Difference("incremento", "precio_propuesto", "precio_actual")},
		},
		{
			Name:     "recargo_proveedores",
			FileName: "recargo_proveedores.csv",
			Query: `
SELECT r.id, r.codigo, r.descripcion, m.nombre AS marca,
       ROUND(r.precio, 2) AS precio_actual,
       ROUND(r.precio * 1.30, 2) AS precio_propuesto,
       p.nombre AS proveedor
FROM Repuesto r
JOIN Proveedor p ON r.proveedor_id = p.id
JOIN Marca m ON r.marca_id = m.id
WHERE p.nombre IN ('AutoRepuestos Express', 'Automax')
  AND r.precio > 50000
  AND r.precio < 100000
ORDER BY p.nombre, r.precio DESC`,
			Derived: []DerivedColumn{Difference("recargo", "precio_propuesto", "precio_actual")},
		},
		{
			Name:     "resumen_proveedores",
			FileName: "resumen_proveedores.csv",
			Query: `
SELECT p.id, p.nombre AS proveedor,
       COUNT(r.id) AS cantidad_repuestos,
       SUM(CASE WHEN r.id IS NOT NULL AND (r.descripcion IS NULL OR r.descripcion = '') THEN 1 ELSE 0 END) AS repuestos_sin_descripcion,
       ROUND(MAX(r.precio), 2) AS precio_mas_alto,
       (SELECT r2.codigo FROM Repuesto r2 WHERE r2.proveedor_id = p.id ORDER BY r2.precio DESC LIMIT 1) AS codigo_mas_caro,
       (SELECT r3.descripcion FROM Repuesto r3 WHERE r3.proveedor_id = p.id ORDER BY r3.precio DESC LIMIT 1) AS descripcion_mas_caro
FROM Proveedor p
LEFT JOIN Repuesto r ON p.id = r.proveedor_id
GROUP BY p.id, p.nombre
ORDER BY cantidad_repuestos DESC`,
		},
		{
			Name:     "promedio_marcas",
			FileName: "promedio_marcas.csv",
			Query: `
SELECT m.nombre AS marca,
       ROUND(AVG(r.precio), 2) AS precio_promedio,
       COUNT(r.id) AS cantidad_repuestos
FROM Marca m
JOIN Repuesto r ON m.id = r.marca_id
GROUP BY m.nombre
ORDER BY precio_promedio DESC`,
		},
	}
}

// Select filters the catalog by report name, keeping catalog order.
// An empty selection returns every report; unknown names are returned separately.
func Select(catalog []Report, names []string) ([]Report, []string) {
	if len(names) == 0 {
		return catalog, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var selected []Report
	for _, r := range catalog {
		if wanted[r.Name] {
			selected = append(selected, r)
			delete(wanted, r.Name)
		}
	}
	var unknown []string
	for _, n := range names {
		if wanted[n] {
			unknown = append(unknown, n)
			delete(wanted, n)
		}
	}
	return selected, unknown
}
