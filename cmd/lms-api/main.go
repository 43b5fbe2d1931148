// @title                       LMS API
// @version                     1.0
// @description                 Courses, enrollments and accounts for the learning platform.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "github.com/lms-g2/lms-api/cmd/lms-api/cmd"

func main() {
	cmd.Execute()
}
