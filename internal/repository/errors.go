package repository

import "errors"

var ErrNotFound = errors.New("не найдено")
var ErrOrderMismatch = errors.New("порядок не совпадает с набором задач")
var ErrDuplicateID = errors.New("задача с таким id уже существует")
