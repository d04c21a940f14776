package cli

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/aanand-mishra/school-records/internal/types"
)

// Service is the part of service.Service the commands use.
type Service interface {
	AddPerson(ctx context.Context, kind types.PersonKind, form types.PersonForm) (types.Person, error)
	UpdatePerson(ctx context.Context, kind types.PersonKind, key string, form types.PersonForm) (types.Person, error)
	GetPerson(ctx context.Context, kind types.PersonKind, key string) (types.Person, error)
	SearchPeople(ctx context.Context, kind types.PersonKind, f types.Filter) ([]types.Person, error)
	DeletePerson(ctx context.Context, kind types.PersonKind, key string) error

	AddCourse(ctx context.Context, form types.CourseForm) (types.Course, error)
	UpdateCourse(ctx context.Context, key string, form types.CourseForm) (types.Course, error)
	GetCourse(ctx context.Context, key string) (types.Course, error)
	SearchCourses(ctx context.Context, f types.Filter) ([]types.Course, error)
	DeleteCourse(ctx context.Context, key string) error
	AssignInstructor(ctx context.Context, courseKey, instructorKey string) error

	Register(ctx context.Context, studentKey, courseKey string) error
	ListRegistrations(ctx context.Context, f types.Filter) ([]types.Registration, error)
	Unregister(ctx context.Context, studentKey, courseKey string) error

	Options(ctx context.Context) (types.Options, error)
	ListRecords(ctx context.Context) ([]types.Record, error)
	ExportFile(ctx context.Context, path string) (string, error)
	Backup(ctx context.Context, dest string) (string, error)
	Clear(ctx context.Context, confirmed bool) error
}

type entity int

const (
	entityStudent entity = iota
	entityInstructor
	entityCourse
	entityRegistration
)

// parseEntity accepts singular and plural names.
func parseEntity(name string) (entity, bool) {
	switch strings.TrimSuffix(strings.ToLower(name), "s") {
	case "student":
		return entityStudent, true
	case "instructor":
		return entityInstructor, true
	case "course":
		return entityCourse, true
	case "registration":
		return entityRegistration, true
	}
	return 0, false
}

func (e entity) kind() types.PersonKind {
	if e == entityInstructor {
		return types.KindInstructor
	}
	return types.KindStudent
}

// Execute runs one command and prints its result to out. Every error it
// returns is an *ExitError.
func Execute(ctx context.Context, svc Service, out io.Writer, command string, args []string) error {
	run, ok := commands[command]
	if !ok {
		return usageError("unknown command %q (run schoolctl -h for the list)", command)
	}
	if err := run(ctx, svc, out, args); err != nil {
		return exitError(err)
	}
	return nil
}

type commandFunc func(ctx context.Context, svc Service, out io.Writer, args []string) error

var commands = map[string]commandFunc{
	"list":       runList,
	"search":     runSearch,
	"show":       runShow,
	"add":        runAdd,
	"update":     runUpdate,
	"delete":     runDelete,
	"assign":     runAssign,
	"register":   runRegister,
	"unregister": runUnregister,
	"options":    runOptions,
	"records":    runRecords,
	"export":     runExport,
	"backup":     runBackup,
	"clear":      runClear,
}

// entityArg reads the leading entity name and checks it against allowed.
func entityArg(command string, args []string, allowed ...entity) (entity, []string, error) {
	if len(args) == 0 {
		return 0, nil, usageError("%s: missing entity", command)
	}
	e, ok := parseEntity(args[0])
	if ok {
		for _, a := range allowed {
			if a == e {
				return e, args[1:], nil
			}
		}
	}
	return 0, nil, usageError("%s: unsupported entity %q", command, args[0])
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError("%s: %s", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usageError("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return nil
}

func exactArgs(command string, args []string, n int) error {
	if len(args) != n {
		return usageError("%s: expected %d argument(s), got %d", command, n, len(args))
	}
	return nil
}

// ─── list / search / show ───────────────────────────────────────────────────

func runList(ctx context.Context, svc Service, out io.Writer, args []string) error {
	e, rest, err := entityArg("list", args, entityStudent, entityInstructor, entityCourse, entityRegistration)
	if err != nil {
		return err
	}
	if err := exactArgs("list", rest, 0); err != nil {
		return err
	}
	return search(ctx, svc, out, e, types.Filter{})
}

func runSearch(ctx context.Context, svc Service, out io.Writer, args []string) error {
	e, rest, err := entityArg("search", args, entityStudent, entityInstructor, entityCourse, entityRegistration)
	if err != nil {
		return err
	}

	var f types.Filter
	fs := newFlagSet("search", out)
	fs.StringVar(&f.Query, "q", "", "Match any searchable field.")
	fs.StringVar(&f.ID, "id", "", "Match the id.")
	fs.StringVar(&f.Name, "name", "", "Match the name.")
	if e == entityStudent || e == entityInstructor {
		fs.StringVar(&f.Age, "age", "", "Match the exact age.")
	}
	if e == entityCourse {
		fs.StringVar(&f.Instructor, "instructor", "", "Match the instructor's name or id.")
	}
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	return search(ctx, svc, out, e, f)
}

func search(ctx context.Context, svc Service, out io.Writer, e entity, f types.Filter) error {
	switch e {
	case entityCourse:
		courses, err := svc.SearchCourses(ctx, f)
		if err != nil {
			return err
		}
		return printCourses(out, courses)
	case entityRegistration:
		regs, err := svc.ListRegistrations(ctx, f)
		if err != nil {
			return err
		}
		return printRegistrations(out, regs)
	default:
		people, err := svc.SearchPeople(ctx, e.kind(), f)
		if err != nil {
			return err
		}
		return printPeople(out, people)
	}
}

func runShow(ctx context.Context, svc Service, out io.Writer, args []string) error {
	e, rest, err := entityArg("show", args, entityStudent, entityInstructor, entityCourse)
	if err != nil {
		return err
	}
	if err := exactArgs("show", rest, 1); err != nil {
		return err
	}

	if e == entityCourse {
		c, err := svc.GetCourse(ctx, rest[0])
		if err != nil {
			return err
		}
		return printCourses(out, []types.Course{c})
	}

	p, err := svc.GetPerson(ctx, e.kind(), rest[0])
	if err != nil {
		return err
	}
	return printPeople(out, []types.Person{p})
}

// ─── add / update / delete ──────────────────────────────────────────────────

func personFlags(name string, out io.Writer, form *types.PersonForm, withID bool) *flag.FlagSet {
	fs := newFlagSet(name, out)
	if withID {
		fs.StringVar(&form.ID, "id", "", "Business id, e.g. S1.")
	}
	fs.StringVar(&form.Name, "name", "", "Full name.")
	fs.StringVar(&form.Age, "age", "", "Age in years.")
	fs.StringVar(&form.Email, "email", "", "Email address.")
	return fs
}

func courseFlags(name string, out io.Writer, form *types.CourseForm, withID bool) *flag.FlagSet {
	fs := newFlagSet(name, out)
	if withID {
		fs.StringVar(&form.ID, "id", "", "Course id, e.g. C1.")
	}
	fs.StringVar(&form.Name, "name", "", "Course name.")
	fs.StringVar(&form.InstructorID, "instructor", "", "Instructor id or email (optional).")
	return fs
}

func runAdd(ctx context.Context, svc Service, out io.Writer, args []string) error {
	e, rest, err := entityArg("add", args, entityStudent, entityInstructor, entityCourse)
	if err != nil {
		return err
	}

	if e == entityCourse {
		var form types.CourseForm
		if err := parseFlags(courseFlags("add course", out, &form, true), rest); err != nil {
			return err
		}
		c, err := svc.AddCourse(ctx, form)
		if err != nil {
			return err
		}
		return printf(out, "Course %s added.\n", c.Key)
	}

	var form types.PersonForm
	if err := parseFlags(personFlags("add "+string(e.kind()), out, &form, true), rest); err != nil {
		return err
	}
	p, err := svc.AddPerson(ctx, e.kind(), form)
	if err != nil {
		return err
	}
	return printf(out, "%s %s added.\n", p.Kind.Label(), p.Key)
}

func runUpdate(ctx context.Context, svc Service, out io.Writer, args []string) error {
	e, rest, err := entityArg("update", args, entityStudent, entityInstructor, entityCourse)
	if err != nil {
		return err
	}
	if len(rest) == 0 || strings.HasPrefix(rest[0], "-") {
		return usageError("update: missing id")
	}
	key, rest := rest[0], rest[1:]

	if e == entityCourse {
		var form types.CourseForm
		if err := parseFlags(courseFlags("update course", out, &form, false), rest); err != nil {
			return err
		}
		c, err := svc.UpdateCourse(ctx, key, form)
		if err != nil {
			return err
		}
		return printCourses(out, []types.Course{c})
	}

	var form types.PersonForm
	if err := parseFlags(personFlags("update "+string(e.kind()), out, &form, false), rest); err != nil {
		return err
	}
	p, err := svc.UpdatePerson(ctx, e.kind(), key, form)
	if err != nil {
		return err
	}
	return printPeople(out, []types.Person{p})
}

func runDelete(ctx context.Context, svc Service, out io.Writer, args []string) error {
	e, rest, err := entityArg("delete", args, entityStudent, entityInstructor, entityCourse)
	if err != nil {
		return err
	}
	if err := exactArgs("delete", rest, 1); err != nil {
		return err
	}

	if e == entityCourse {
		if err := svc.DeleteCourse(ctx, rest[0]); err != nil {
			return err
		}
		return printf(out, "Course %s deleted.\n", rest[0])
	}

	if err := svc.DeletePerson(ctx, e.kind(), rest[0]); err != nil {
		return err
	}
	return printf(out, "%s %s deleted.\n", e.kind().Label(), rest[0])
}

// ─── courses and registrations ──────────────────────────────────────────────

func runAssign(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return usageError("assign: expected <course> [instructor]")
	}
	instructor := ""
	if len(args) == 2 {
		instructor = args[1]
	}

	if err := svc.AssignInstructor(ctx, args[0], instructor); err != nil {
		return err
	}
	if instructor == "" {
		return printf(out, "Course %s has no instructor.\n", args[0])
	}
	return printf(out, "Instructor %s assigned to course %s.\n", instructor, args[0])
}

func runRegister(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if err := exactArgs("register", args, 2); err != nil {
		return err
	}
	if err := svc.Register(ctx, args[0], args[1]); err != nil {
		return err
	}
	return printf(out, "Student %s registered to course %s.\n", args[0], args[1])
}

func runUnregister(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if err := exactArgs("unregister", args, 2); err != nil {
		return err
	}
	if err := svc.Unregister(ctx, args[0], args[1]); err != nil {
		return err
	}
	return printf(out, "Student %s removed from course %s.\n", args[0], args[1])
}

// ─── whole database ─────────────────────────────────────────────────────────

func runOptions(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if err := exactArgs("options", args, 0); err != nil {
		return err
	}
	opts, err := svc.Options(ctx)
	if err != nil {
		return err
	}
	return printOptions(out, opts)
}

func runRecords(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if err := exactArgs("records", args, 0); err != nil {
		return err
	}
	records, err := svc.ListRecords(ctx)
	if err != nil {
		return err
	}
	return printRecords(out, records)
}

func runExport(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if err := exactArgs("export", args, 1); err != nil {
		return err
	}
	path, err := svc.ExportFile(ctx, args[0])
	if err != nil {
		return err
	}
	return printf(out, "Data exported to %s.\n", path)
}

func runBackup(ctx context.Context, svc Service, out io.Writer, args []string) error {
	if err := exactArgs("backup", args, 1); err != nil {
		return err
	}
	path, err := svc.Backup(ctx, args[0])
	if err != nil {
		return err
	}
	return printf(out, "Database backed up to %s.\n", path)
}

func runClear(ctx context.Context, svc Service, out io.Writer, args []string) error {
	fs := newFlagSet("clear", out)
	yes := fs.Bool("yes", false, "Confirm that every record should be deleted.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := svc.Clear(ctx, *yes); err != nil {
		return err
	}
	return printf(out, "Database cleared.\n")
}
