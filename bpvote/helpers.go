package bpvote

import (
	"fmt"
	"os"
)

func Touch(path string) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
	}
	return nil
}

//Contains checks if a slice contains a string
func Contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

//Percentage formats part/total as a two decimal place percentage. A zero total
//would divide by zero, so it yields an empty string instead.
func Percentage(part, total float64) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f%%", part/total*100)
}
