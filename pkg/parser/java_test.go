package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceSource = `package com.acme.billing;

import java.util.List;
import org.springframework.stereotype.Service;

/**
 * Handles invoice lifecycle.
 */
@Service
public class InvoiceService extends BaseService implements AuditAware, Closeable {

    @Autowired
    private InvoiceRepository repository;

    private final int batchSize = 50;

    public InvoiceService(InvoiceRepository repository) {
        this.repository = repository;
    }

    @Transactional
    public Invoice create(CreateRequest request, String userId) throws ValidationException {
        validate(request);
        Invoice invoice = Invoice.from(request);
        return repository.save(invoice);
    }

    public List<Invoice> findAll() {
        return repository.findAll();
    }
}
`

func TestJavaParser_TypeDeclaration(t *testing.T) {
	p := NewJavaParser()
	file, err := p.Parse(context.Background(), "src/main/java/com/acme/billing/InvoiceService.java", []byte(serviceSource))
	require.NoError(t, err)

	assert.Equal(t, "com.acme.billing", file.Package)
	assert.Equal(t, []string{"java.util.List", "org.springframework.stereotype.Service"}, file.Imports)

	require.Len(t, file.Types, 1)
	typ := file.Types[0]
	assert.Equal(t, KindClass, typ.Kind)
	assert.Equal(t, "InvoiceService", typ.Name)
	assert.Equal(t, "com.acme.billing.InvoiceService", typ.FQN)
	assert.Equal(t, []string{"Service"}, typ.Annotations)
	assert.Equal(t, []string{"BaseService"}, typ.Extends)
	assert.Equal(t, []string{"AuditAware", "Closeable"}, typ.Implements)
	assert.Contains(t, typ.Source, "class InvoiceService")
}

func TestJavaParser_Members(t *testing.T) {
	p := NewJavaParser()
	file, err := p.Parse(context.Background(), "InvoiceService.java", []byte(serviceSource))
	require.NoError(t, err)
	typ := file.Types[0]

	require.Len(t, typ.Fields, 2)
	assert.Equal(t, "repository", typ.Fields[0].Name)
	assert.Equal(t, "InvoiceRepository", typ.Fields[0].Type)
	assert.Equal(t, []string{"Autowired"}, typ.Fields[0].Annotations)
	assert.Equal(t, "batchSize", typ.Fields[1].Name)

	require.Len(t, typ.Methods, 3)

	ctor := typ.Methods[0]
	assert.Equal(t, "InvoiceService", ctor.Name)
	assert.Equal(t, "InvoiceService(InvoiceRepository)", ctor.Signature)

	create := typ.Methods[1]
	assert.Equal(t, "create", create.Name)
	assert.Equal(t, "Invoice", create.ReturnType)
	assert.Equal(t, []string{"CreateRequest", "String"}, create.ParamTypes)
	assert.Equal(t, []string{"ValidationException"}, create.Throws)
	assert.Equal(t, []string{"Transactional"}, create.Annotations)
	assert.Contains(t, create.Calls, "validate")
	assert.Contains(t, create.Calls, "save")
	assert.Contains(t, create.Calls, "from")

	findAll := typ.Methods[2]
	assert.Equal(t, "findAll", findAll.Name)
	assert.Equal(t, "findAll()", findAll.Signature)
	assert.Empty(t, findAll.ParamTypes)
}

func TestJavaParser_InterfaceWithAbstractMethods(t *testing.T) {
	src := `package com.acme;

public interface PaymentGateway extends Closeable {

    Receipt charge(Money amount, String accountId);

    void refund(String receiptId);
}
`
	p := NewJavaParser()
	file, err := p.Parse(context.Background(), "PaymentGateway.java", []byte(src))
	require.NoError(t, err)

	require.Len(t, file.Types, 1)
	typ := file.Types[0]
	assert.Equal(t, KindInterface, typ.Kind)
	require.Len(t, typ.Methods, 2)
	assert.Equal(t, "charge(Money,String)", typ.Methods[0].Signature)
	assert.Equal(t, "refund(String)", typ.Methods[1].Signature)
}

func TestJavaParser_GenericParamsSplitCorrectly(t *testing.T) {
	src := `package com.acme;

public class Mapper {

    public void merge(Map<String, Integer> counts, List<String> keys) {
        counts.size();
    }
}
`
	p := NewJavaParser()
	file, err := p.Parse(context.Background(), "Mapper.java", []byte(src))
	require.NoError(t, err)

	require.Len(t, file.Types[0].Methods, 1)
	assert.Equal(t, []string{"Map", "List"}, file.Types[0].Methods[0].ParamTypes)
}

func TestJavaParser_UnterminatedType(t *testing.T) {
	src := "package com.acme;\npublic class Broken {\n  public void f() {\n"
	p := NewJavaParser()
	_, err := p.Parse(context.Background(), "Broken.java", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}
