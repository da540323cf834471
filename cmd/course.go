package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/course"
	"github.com/spf13/cobra"
)

func newCourseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Inspect courses and manage enrollments (non-UI)",
	}
	cmd.AddCommand(newCourseListCmd())
	cmd.AddCommand(newCourseEnrollCmd())
	cmd.AddCommand(newCourseSetGradeCmd())
	return cmd
}

// withCourses opens the database and hands fn a course service.
func withCourses(fn func(ctx context.Context, svc *course.Service) error) error {
	ctx := context.Background()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, course.NewService(course.NewRepo(rt.db), auth.NewStore(rt.db), rt.logger))
}

func newCourseListCmd() *cobra.Command {
	var teacherID int64
	c := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCourses(func(ctx context.Context, svc *course.Service) error {
				var cs []course.Course
				var err error
				if teacherID > 0 {
					cs, err = svc.TeacherCourses(ctx, teacherID)
				} else {
					cs, err = svc.Courses(ctx)
				}
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tLEVEL\tDAYS\tTIME\tTEACHER")
				for _, crs := range cs {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
						crs.ID, crs.Title, crs.RequiredLevel, crs.ClassDays, crs.ClassTime, crs.TeacherName)
				}
				return tw.Flush()
			})
		},
	}
	c.Flags().Int64Var(&teacherID, "teacher-id", 0, "only courses taught by this user")
	return c
}

func newCourseEnrollCmd() *cobra.Command {
	var courseID int64
	var username string
	c := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a student in a course on behalf of its teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCourses(func(ctx context.Context, svc *course.Service) error {
				crs, _, err := svc.CourseDetail(ctx, courseID)
				if err != nil {
					return fmt.Errorf("course %d: %w", courseID, err)
				}
				created, err := svc.Enroll(ctx, crs.TeacherID, crs.ID, username)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "enrolled %q in %q\n", username, crs.Title)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is already enrolled in %q\n", username, crs.Title)
				}
				return nil
			})
		},
	}
	c.Flags().Int64Var(&courseID, "course-id", 0, "course id")
	c.Flags().StringVar(&username, "username", "", "student username")
	_ = c.MarkFlagRequired("course-id")
	_ = c.MarkFlagRequired("username")
	return c
}

func newCourseSetGradeCmd() *cobra.Command {
	var courseID, studentID int64
	var grade string
	c := &cobra.Command{
		Use:   "set-grade",
		Short: "Set an enrolled student's grade (0-100) on behalf of the course teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := course.ParseGrade(grade); err != nil {
				return fmt.Errorf("--grade: %w", err)
			}
			return withCourses(func(ctx context.Context, svc *course.Service) error {
				crs, _, err := svc.CourseDetail(ctx, courseID)
				if err != nil {
					return fmt.Errorf("course %d: %w", courseID, err)
				}
				if err := svc.SetGrade(ctx, crs.TeacherID, crs.ID, studentID, grade); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "grade %s recorded for student %d in %q\n", grade, studentID, crs.Title)
				return nil
			})
		},
	}
	c.Flags().Int64Var(&courseID, "course-id", 0, "course id")
	c.Flags().Int64Var(&studentID, "student-id", 0, "student user id")
	c.Flags().StringVar(&grade, "grade", "", "whole number from 0 to 100")
	_ = c.MarkFlagRequired("course-id")
	_ = c.MarkFlagRequired("student-id")
	_ = c.MarkFlagRequired("grade")
	return c
}
