// Package uow implements the unit of work: one database transaction shared
// by the user and profile repositories, committed or rolled back as a whole.
//
//	err := uow.WithUnitOfWork(ctx, factory, func(ctx context.Context, u *uow.UnitOfWork) error {
//		user, err := u.Users.Add(ctx, in)
//		...
//	})
package uow
