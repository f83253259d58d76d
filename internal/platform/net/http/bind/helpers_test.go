package bind

import "reflect"

func reflectField[T any](i int) reflect.StructField {
	var v T
	return reflect.TypeOf(v).Field(i)
}
