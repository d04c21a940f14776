package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aanand-mishra/school-records/internal/types"
)

func printf(out io.Writer, format string, a ...any) error {
	_, err := fmt.Fprintf(out, format, a...)
	return err
}

// table writes a header and rows aligned in columns.
func table(out io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return printf(out, "No records found.\n")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func printPeople(out io.Writer, people []types.Person) error {
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		rows = append(rows, []string{p.Key, p.Name, strconv.Itoa(p.Age), p.Email})
	}
	return table(out, []string{"ID", "NAME", "AGE", "EMAIL"}, rows)
}

func printCourses(out io.Writer, courses []types.Course) error {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		instructor := "-"
		if c.InstructorKey != "" {
			instructor = c.InstructorName + " (" + c.InstructorKey + ")"
		}
		rows = append(rows, []string{c.Key, c.Name, instructor})
	}
	return table(out, []string{"ID", "NAME", "INSTRUCTOR"}, rows)
}

func printRegistrations(out io.Writer, regs []types.Registration) error {
	rows := make([][]string, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, []string{r.StudentKey, r.StudentName, r.CourseKey, r.CourseName})
	}
	return table(out, []string{"STUDENT", "STUDENT NAME", "COURSE", "COURSE NAME"}, rows)
}

func printRecords(out io.Writer, records []types.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		age := ""
		if r.Age != nil {
			age = strconv.Itoa(*r.Age)
		}
		rows = append(rows, []string{r.Type, r.ID, r.Name, age, r.Email})
	}
	return table(out, []string{"TYPE", "ID", "NAME", "AGE", "EMAIL"}, rows)
}

func printOptions(out io.Writer, opts types.Options) error {
	if err := printf(out, "Revision: %d\n", opts.Revision); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LIST\tID\tLABEL")
	for _, group := range []struct {
		name    string
		options []types.Option
	}{
		{"students", opts.Students},
		{"instructors", opts.Instructors},
		{"courses", opts.Courses},
	} {
		for _, o := range group.options {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", group.name, o.Key, o.Label)
		}
	}
	return tw.Flush()
}
